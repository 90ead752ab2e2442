package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"TpexRadar/internal/config"
	"TpexRadar/internal/report"
	"TpexRadar/internal/tpex"
	"TpexRadar/internal/web"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	side := flag.String("side", "buy", "report side: buy or sell")
	date := flag.String("date", "", "trading date (ROC or YYYYMMDD), empty for most recent")
	out := flag.String("out", "tpex_buy.csv", "output CSV path")
	flag.Parse()

	if *side != "buy" && *side != "sell" {
		log.Fatalf("[FATAL] invalid --side %q, must be buy or sell", *side)
	}

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}

	httpClient := web.NewClient(web.Options{
		Headers:               tpex.DefaultHeaders(cfg.Tpex.Referer),
		Proxy:                 cfg.Proxy,
		AllowInsecureFallback: !cfg.HTTP.StrictTLS,
		RequestsPerSecond:     cfg.HTTP.RequestsPerSecond,
	})
	flow := tpex.NewClient(httpClient, cfg.Tpex.BaseURL)

	day, rows, err := flow.FetchDaily(context.Background(), tpex.Side(*side), *date)
	if err != nil {
		log.Fatalf("[FATAL] fetch daily report: %v", err)
	}

	if len(rows) == 0 {
		fmt.Println("⚠️ 今天沒有資料。輸出空檔案並成功結束。")
		if err := report.WriteCSV(*out, nil); err != nil {
			log.Fatalf("[FATAL] write csv: %v", err)
		}
		return
	}

	tpex.SortRows(rows, tpex.Side(*side))
	if err := report.WriteCSV(*out, rows); err != nil {
		log.Fatalf("[FATAL] write csv: %v", err)
	}
	fmt.Printf("✅ 抓到 %d 筆（%s, %s）→ %s\n", len(rows), day, *side, *out)
}
