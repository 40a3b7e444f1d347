package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"

	"flzt_checkin/internal/config"
	"flzt_checkin/internal/engine"
	"flzt_checkin/internal/logbus"
	"flzt_checkin/internal/notify"
	"flzt_checkin/internal/provider/standard"
	"flzt_checkin/internal/utils"
)

func main() {
	os.Exit(run())
}

func run() (code int) {
	configPath := flag.String("config", "", "optional path to config.yaml; environment variables take precedence")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("load config: %v", err)
		return 1
	}

	bus := logbus.New(200, logbus.NewLogger("FLZT", cfg.Log.Level, os.Stdout))
	defer bus.Close()
	bus.SetField("runId", uuid.NewString())

	defer func() {
		if r := recover(); r != nil {
			bus.Log("error", "任务执行失败", map[string]any{"panic": fmt.Sprint(r)})
			code = 1
		}
	}()

	bus.Log("info", "配置加载", map[string]any{
		"baseURL": cfg.Provider.BaseURL,
		"email":   utils.MaskEmail(cfg.Account.Email),
		"convert": cfg.Convert.Enabled,
	})

	banner := strings.Repeat("=", 50)
	bus.Log("info", banner, nil)
	bus.Log("info", "FLZT自动签到任务开始", nil)
	bus.Log("info", banner, nil)

	prov, err := standard.New(cfg.Provider, bus)
	if err != nil {
		bus.Log("error", "初始化客户端失败", map[string]any{"error": err.Error()})
		return 1
	}

	sess := engine.New(engine.Options{
		Defaults: cfg.Account,
		Provider: prov,
		Notifier: notify.FromSettings(cfg.Notify, bus),
		Bus:      bus,
		Convert:  cfg.Convert,
	})
	rep := sess.Run(context.Background())
	if rep.Err != nil {
		bus.Log("warn", "任务未完全成功", map[string]any{
			"stage": string(rep.Stage),
			"error": rep.Err.Error(),
		})
	}

	bus.Log("info", banner, nil)
	bus.Log("info", "FLZT自动签到任务结束", nil)
	bus.Log("info", banner, nil)
	return 0
}
