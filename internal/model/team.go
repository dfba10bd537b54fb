package model

// Team 团队表 — 对应 teams
// 成员通过 users.team_id 归属；组长通过 team_leaders 关联（一个团队可有多名组长）
type Team struct {
	TeamID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"team_id"`
	Name   string `gorm:"type:varchar(100);not null;uniqueIndex"          json:"name"`
	BaseModel

	Leaders []User `gorm:"many2many:team_leaders;foreignKey:TeamID;joinForeignKey:TeamID;references:UserID;joinReferences:UserID" json:"leaders,omitempty"`
}

// TableName 指定表名
func (Team) TableName() string { return "teams" }

// TeamLeader 团队组长关联表 — 对应 team_leaders
type TeamLeader struct {
	TeamID string `gorm:"type:uuid;primaryKey" json:"team_id"`
	UserID string `gorm:"type:uuid;primaryKey" json:"user_id"`
}

// TableName 指定表名
func (TeamLeader) TableName() string { return "team_leaders" }
