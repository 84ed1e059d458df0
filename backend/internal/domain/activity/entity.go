package activity

import (
	"time"

	user "isizulu-corpus/backend/internal/domain/user"

	"gorm.io/datatypes"
)

// Action 枚举审计日志记录的动作类型。
type Action string

const (
	ActionSearch Action = "search"
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionImport Action = "import"
	ActionExport Action = "export"
)

// Valid 判断动作是否在允许范围内。
func (a Action) Valid() bool {
	switch a {
	case ActionSearch, ActionView, ActionCreate, ActionUpdate, ActionDelete, ActionImport, ActionExport:
		return true
	default:
		return false
	}
}

// Log 是只追加的审计记录，用户删除后 user_id 置空但记录保留。
type Log struct {
	ID          uint              `gorm:"primaryKey" json:"id"`                  // 主键
	UserID      *uint             `gorm:"index" json:"user_id"`                  // 操作者，匿名时为空
	User        *user.User        `gorm:"constraint:OnDelete:SET NULL" json:"-"` // 关联用户（删除用户时置空）
	Action      Action            `gorm:"size:20;index;not null" json:"action"`  // 动作类型
	Description string            `gorm:"type:text" json:"description"`          // 描述
	IPAddress   *string           `gorm:"size:45" json:"ip_address"`             // 来源 IP，可为空
	Metadata    datatypes.JSONMap `json:"metadata,omitempty"`                    // 结构化上下文（查询词、数量等）
	CreatedAt   time.Time         `gorm:"index" json:"created_at"`               // 创建时间
	UpdatedAt   time.Time         `json:"updated_at"`                            // 更新时间
}

// TableName 指定数据库表名。
func (Log) TableName() string {
	return "activity_logs"
}
