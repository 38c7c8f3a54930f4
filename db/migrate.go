package db

import (
	"log"
)

// createTables 如果数据库中不存在必要的表，则创建它们
func createTables() {
	// 人事档案表: 编号(静态)在全服务器内唯一
	createPersonnelTableSQL := `
	CREATE TABLE IF NOT EXISTS personnel (
		discord_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		static TEXT NOT NULL,
		rank TEXT NOT NULL DEFAULT '',
		position TEXT NOT NULL DEFAULT '',
		department TEXT NOT NULL DEFAULT '',
		is_dismissed INTEGER NOT NULL DEFAULT 0,
		joined_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);`

	_, err := DB.Exec(createPersonnelTableSQL)
	if err != nil {
		log.Fatalf("Failed to create personnel table: %v", err)
	}

	// 编号唯一性只约束在役人员, 退役档案保留原编号作为历史记录
	createStaticIndexSQL := `
	CREATE UNIQUE INDEX IF NOT EXISTS idx_personnel_static_active
	ON personnel(static) WHERE is_dismissed = 0;`

	_, err = DB.Exec(createStaticIndexSQL)
	if err != nil {
		log.Fatalf("Failed to create personnel static index: %v", err)
	}
}
