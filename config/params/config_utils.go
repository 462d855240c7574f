package params

import (
	"sync"

	"github.com/mohae/deepcopy"
)

var boardConfig = ProductionConfig()
var boardConfigLock sync.RWMutex

// BoardConfig retrieves the active board configuration.
func BoardConfig() *CourtBoardConfig {
	boardConfigLock.RLock()
	defer boardConfigLock.RUnlock()
	return boardConfig
}

// OverrideBoardConfig by replacing the config. The preferred pattern is to
// call BoardConfig().Copy(), change the specific parameters, and then call
// OverrideBoardConfig(c). Any subsequent calls to params.BoardConfig() will
// return this new configuration.
func OverrideBoardConfig(c *CourtBoardConfig) {
	boardConfigLock.Lock()
	defer boardConfigLock.Unlock()
	boardConfig = c
}

// Copy returns a copy of the config object.
func (b *CourtBoardConfig) Copy() *CourtBoardConfig {
	boardConfigLock.RLock()
	defer boardConfigLock.RUnlock()
	config, ok := deepcopy.Copy(*b).(CourtBoardConfig)
	if !ok {
		config = *boardConfig
	}
	return &config
}
