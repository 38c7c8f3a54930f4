package model

// Config 对应于 config.yaml 的顶级结构
type Config struct {
	Token       string                `mapstructure:"TOKEN"`
	Commands    Commands              `mapstructure:"commands"`
	Auth        Auth                  `mapstructure:"auth"`
	Database    Database              `mapstructure:"database"`
	Departments map[string]Department `mapstructure:"departments"`
	Warehouse   Warehouse             `mapstructure:"warehouse"`
}

// Commands 对应 "commands" 部分
type Commands struct {
	AllowGuilds []string `mapstructure:"allow_guilds"`
}

// Auth 定义两级审核权限：管理员 ⊃ 审核员
type Auth struct {
	Admins     TierMembers `mapstructure:"admins"`
	Moderators TierMembers `mapstructure:"moderators"`
}

// TierMembers lists the users and roles that belong to one auth tier.
type TierMembers struct {
	Users []string `mapstructure:"users"`
	Roles []string `mapstructure:"roles"`
}

// Database 对应 "database" 部分
type Database struct {
	Path string `mapstructure:"path"`
}

// Department 定义一个部门（申请上下文）的全部配置
type Department struct {
	Name            string   `mapstructure:"name"`
	Abbreviation    string   `mapstructure:"abbreviation"`
	Color           int      `mapstructure:"color"`
	ChannelID       string   `mapstructure:"channel_id"`
	RoleID          string   `mapstructure:"role_id"`
	PositionRoleIDs []string `mapstructure:"position_role_ids"`
	PingRoleIDs     []string `mapstructure:"ping_role_ids"`
}

// Warehouse 对应 "warehouse" 部分
type Warehouse struct {
	ChannelID           string              `mapstructure:"channel_id"`
	SubmissionChannelID string              `mapstructure:"submission_channel_id"`
	CooldownHours       int                 `mapstructure:"cooldown_hours"`
	Categories          map[string][]string `mapstructure:"categories"`
	Limits              LimitTable          `mapstructure:"limits"`
	PingRoleIDs         map[string][]string `mapstructure:"ping_role_ids"`
}

// LimitTable 按 职务 -> 军衔 -> 默认 三级查找数量上限
type LimitTable struct {
	Positions map[string]CategoryLimits `mapstructure:"positions"`
	Ranks     map[string]CategoryLimits `mapstructure:"ranks"`
	Default   CategoryLimits            `mapstructure:"default"`
}

// CategoryLimits holds per-category quantity caps and the weapon allow-list
// for a single tier. A missing category in Caps means "no cap".
type CategoryLimits struct {
	Caps            map[string]int `mapstructure:"caps"`
	WeaponAllowlist []string       `mapstructure:"weapon_allowlist"`
}

// PanelState 记录某个面板消息的位置，用于重启后恢复
type PanelState struct {
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id"`
}
