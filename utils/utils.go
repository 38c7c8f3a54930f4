package utils

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"garrison/model"
)

// StringPtr returns a pointer to the given string.
// This is a helper function for discordgo fields that require a *string.
func StringPtr(s string) *string {
	return &s
}

var panelMutex sync.Mutex

// SavePanelState 保存面板状态到JSON文件, 按key区分多个面板
func SavePanelState(filePath, key, channelID, messageID string) error {
	panelMutex.Lock()
	defer panelMutex.Unlock()

	states, err := loadPanelFile(filePath)
	if err != nil {
		return err
	}
	states[key] = model.PanelState{ChannelID: channelID, MessageID: messageID}

	data, err := json.MarshalIndent(states, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(filePath, data, 0644)
}

// LoadPanelState 从JSON文件加载面板状态, 未记录时返回 nil
func LoadPanelState(filePath, key string) (*model.PanelState, error) {
	panelMutex.Lock()
	defer panelMutex.Unlock()

	states, err := loadPanelFile(filePath)
	if err != nil {
		return nil, err
	}
	state, ok := states[key]
	if !ok {
		return nil, nil
	}
	return &state, nil
}

func loadPanelFile(filePath string) (map[string]model.PanelState, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]model.PanelState), nil
		}
		return nil, err
	}
	states := make(map[string]model.PanelState)
	if err := json.Unmarshal(data, &states); err != nil {
		return nil, err
	}
	return states, nil
}
