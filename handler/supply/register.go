package supply

import (
	"garrison/command/def"
	"garrison/handler"
)

// RegisterHandlers registers all handlers for the supply package.
func RegisterHandlers() {
	handler.AddCommandHandler(def.WarehousePanelCommand.Name, CreatePanelCommandHandler)

	// 申领流程
	handler.AddComponentHandler("wh_open", OpenButtonHandler)
	handler.AddComponentHandler("wh_cat", CategorySelectHandler)
	handler.AddComponentHandler("wh_item", ItemSelectHandler)
	handler.AddModalHandler("wh_qty", QuantityModalHandler)
	handler.AddComponentHandler("wh_more", MoreButtonHandler)
	handler.AddComponentHandler("wh_submitcart", SubmitCartHandler)
	handler.AddComponentHandler("wh_removebtn", RemoveButtonHandler)
	handler.AddModalHandler("wh_remove_modal", RemoveModalHandler)
	handler.AddComponentHandler("wh_clear", ClearButtonHandler)

	// 补给审核控件
	handler.AddControlHandler(ActionIssue, IssueControlHandler)
	handler.AddControlHandler(ActionDeny, DenyControlHandler)
}
