package config

import (
	"garrison/model"

	"github.com/spf13/viper"
)

// Cfg is the global configuration, populated by LoadConfig.
var Cfg model.Config

// LoadConfig 从 config.yaml 读取配置
func LoadConfig() (err error) {
	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&Cfg)
	return
}

// Department returns the configuration of a department, if defined.
func Department(code string) (model.Department, bool) {
	dept, ok := Cfg.Departments[code]
	return dept, ok
}

// AllDepartmentRoleIDs 收集所有部门身份组ID
func AllDepartmentRoleIDs() []string {
	var ids []string
	for _, dept := range Cfg.Departments {
		if dept.RoleID != "" {
			ids = append(ids, dept.RoleID)
		}
	}
	return ids
}

// AllPositionRoleIDs 收集所有可自动分配的职务身份组ID
func AllPositionRoleIDs() []string {
	var ids []string
	for _, dept := range Cfg.Departments {
		ids = append(ids, dept.PositionRoleIDs...)
	}
	return ids
}
