package params

const (
	Production ConfigName = iota
	Minimal
)

// ConfigNames provides board configuration names.
var ConfigNames = map[ConfigName]string{
	Production: "production",
	Minimal:    "minimal",
}

// ConfigName enum describes the type of known configuration in use.
type ConfigName int

func (n ConfigName) String() string {
	s, ok := ConfigNames[n]
	if !ok {
		return "undefined"
	}
	return s
}

// AllConfigs returns a fresh copy of every known preset.
func AllConfigs() map[ConfigName]*CourtBoardConfig {
	all := make(map[ConfigName]*CourtBoardConfig)
	for name := range ConfigNames {
		var cfg *CourtBoardConfig
		switch name {
		case Production:
			cfg = ProductionConfig()
		case Minimal:
			cfg = MinimalBoardConfig()
		}
		all[name] = cfg.Copy()
	}
	return all
}
