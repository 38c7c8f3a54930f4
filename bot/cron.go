package bot

import (
	"log"

	"github.com/robfig/cron/v3"

	"garrison/handler/application"
	"garrison/handler/supply"
)

var scheduler *cron.Cron

// startCron 启动后台定时任务
func startCron() {
	scheduler = cron.New()

	// 定期清理闲置的申领清单
	scheduler.AddFunc("@every 10m", func() {
		if dropped := supply.Carts.Sweep(); dropped > 0 {
			log.Printf("Swept %d idle requisition carts", dropped)
		}
	})

	// 每天凌晨重建面板, 防止面板消息被误删后长期缺失
	scheduler.AddFunc("0 4 * * *", func() {
		if dg == nil {
			return
		}
		application.Restore(dg)
		supply.RestorePanel(dg)
	})

	scheduler.Start()
}

func stopCron() {
	if scheduler != nil {
		scheduler.Stop()
	}
}
