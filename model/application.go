package model

import "time"

// AppStatus represents the lifecycle status of an application.
type AppStatus string

const (
	// StatusDraft1 第一阶段表单已填写，尚未进入第二阶段
	StatusDraft1 AppStatus = "draft1"
	// StatusDraft2 第二阶段表单已填写，等待最终确认
	StatusDraft2 AppStatus = "draft2"
	// StatusPending 已发布到频道，等待审核
	StatusPending AppStatus = "pending"
	// StatusApproved 已通过
	StatusApproved AppStatus = "approved"
	// StatusRejected 已拒绝
	StatusRejected AppStatus = "rejected"
	// StatusDeleted 已被申请人或管理员删除
	StatusDeleted AppStatus = "deleted"
)

// Terminal reports whether the status is a final state.
func (s AppStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusDeleted
}

// AppKind represents the kind of application.
type AppKind string

const (
	// KindJoin 入队申请
	KindJoin AppKind = "join"
	// KindTransfer 转调申请（从其他部门转入）
	KindTransfer AppKind = "transfer"
	// KindSupply 物资申请
	KindSupply AppKind = "supply"
)

// Application is a workflow request whose canonical storage is a single
// rendered channel message. There is no database row behind it: everything
// that must survive a restart has to be encoded into the message itself.
type Application struct {
	RequesterID  string
	Department   string
	Kind         AppKind
	Name         string
	Static       string
	DocumentURL  string
	Reason       string
	OOCName      string
	OOCAge       string
	Extra        string
	Status       AppStatus
	DecidedBy    string
	DecidedAt    time.Time
	RejectReason string
	ChannelID    string
	MessageID    string
	CreatedAt    time.Time
}

// DraftSession holds the temporary data for an in-progress form flow.
// 仅存在于进程内缓存中，重启后过期。
type DraftSession struct {
	App        Application
	DeptCode   string
	WhCategory string
	WhItem     string
	CreatedAt  time.Time
}
