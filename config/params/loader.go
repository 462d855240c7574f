package params

import (
	"fmt"
	"io/ioutil"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

// LoadBoardConfigFile loads an operator override file, converts human
// duration values into a form the yaml parser understands, unmarshals, and
// applies the board config. Unknown keys fail loudly so typos cannot
// silently fall back to defaults.
func LoadBoardConfigFile(boardConfigFileName string) {
	yamlFile, err := ioutil.ReadFile(boardConfigFileName) // #nosec G304
	if err != nil {
		log.WithError(err).Fatal("Failed to read board config file.")
	}
	conf := BoardConfig().Copy()
	lines := strings.Split(string(yamlFile), "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "#") {
			continue
		}
		lines[i] = replaceDurationWithYAMLFormat(line)
	}
	yamlFile = []byte(strings.Join(lines, "\n"))
	if err := yaml.UnmarshalStrict(yamlFile, conf); err != nil {
		if _, ok := err.(*yaml.TypeError); !ok {
			log.WithError(err).Fatal("Failed to parse board config yaml file.")
		} else {
			log.WithError(err).Error("There were some issues parsing the config from a yaml file")
		}
	}
	if conf.BusinessStartHour > conf.BusinessEndHour {
		log.Fatalf("Business hours window [%d,%d] is inverted", conf.BusinessStartHour, conf.BusinessEndHour)
	}
	log.Debugf("Config file values: %+v", conf)
	OverrideBoardConfig(conf)
}

// replaceDurationWithYAMLFormat rewrites values like "30s" or "5m" into
// nanosecond integers, which yaml unmarshals into time.Duration fields.
// Values that do not parse as durations pass through untouched.
func replaceDurationWithYAMLFormat(line string) string {
	parts := strings.SplitN(line, ":", 2)
	if len(parts) != 2 {
		return line
	}
	val := strings.TrimSpace(parts[1])
	if val == "" {
		return line
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return line
	}
	return fmt.Sprintf("%s: %d", parts[0], d.Nanoseconds())
}
