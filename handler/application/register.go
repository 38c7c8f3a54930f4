package application

import (
	"garrison/codec"
	"garrison/command/def"
	"garrison/handler"
)

// RegisterHandlers registers all handlers for the application package.
func RegisterHandlers() {
	handler.AddCommandHandler(def.DeptPanelCommand.Name, CreatePanelCommandHandler)
	handler.AddCommandHandler(def.DeptStatusCommand.Name, StatusCommandHandler)

	// 两步申请流程
	handler.AddComponentHandler("dept_join", DeptButtonHandler)
	handler.AddComponentHandler("dept_transfer", DeptButtonHandler)
	handler.AddModalHandler("app_stage1", Stage1ModalHandler)
	handler.AddComponentHandler("app_next", NextButtonHandler)
	handler.AddModalHandler("app_stage2", Stage2ModalHandler)
	handler.AddComponentHandler("app_submit", SubmitButtonHandler)
	handler.AddComponentHandler("app_cancel", CancelButtonHandler)

	// 审核控件, 按持久化控件ID中的动作路由
	handler.AddControlHandler(codec.ActionApprove, ApproveControlHandler)
	handler.AddControlHandler(codec.ActionReject, RejectControlHandler)
	handler.AddControlHandler(codec.ActionDelete, DeleteControlHandler)
	handler.AddControlHandler(codec.ActionEdit, EditControlHandler)
	handler.AddModalHandler("app_reject", RejectModalHandler)
	handler.AddModalHandler("app_editmodal", EditModalHandler)
	handler.AddComponentHandler("app_delconfirm", DeleteConfirmHandler)
	handler.AddComponentHandler("app_delcancel", DeleteCancelHandler)

	// 编号冲突处理
	handler.AddComponentHandler("conflict_replace", ConflictReplaceHandler)
	handler.AddComponentHandler("conflict_reject", ConflictRejectHandler)
}
