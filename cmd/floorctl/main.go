// Command floorctl is the operator tool for end-of-day reconciliation.
//
//	floorctl report    -date 2026-10-19
//	floorctl close-day -date 2026-10-19 -cash 1520.50 -actor mgr-1 [-notes "..."]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"restaurant-floor-backend/config"
	"restaurant-floor-backend/internal/audit"
	"restaurant-floor-backend/internal/db"
	"restaurant-floor-backend/internal/logging"
	"restaurant-floor-backend/internal/reconcile"
	"restaurant-floor-backend/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	cfg.Log.Format = "console"
	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	gormDB, err := db.Init(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	appStore := store.NewGormStore(gormDB)
	recorder := audit.NewRecorder(appStore, logger)
	days := reconcile.NewService(appStore, recorder, cfg.Business.Location, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch os.Args[1] {
	case "report":
		err = runReport(ctx, days, os.Args[2:], os.Stdout)
	case "close-day":
		err = runCloseDay(ctx, days, os.Args[2:], os.Stdout)
	default:
		usage()
		os.Exit(2)
	}
	recorder.Wait()
	if err != nil {
		logger.Fatal(os.Args[1]+" failed", zap.Error(err))
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: floorctl <report|close-day> [flags]")
}

func runReport(ctx context.Context, days *reconcile.Service, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	date := fs.String("date", time.Now().Format(time.DateOnly), "business date (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	preview, err := days.PreviewDay(ctx, *date)
	if err != nil {
		return err
	}

	status := "open"
	if preview.Closed {
		status = "closed"
	}
	return renderTotals(out, preview.Date+" ("+status+")", preview.Totals, nil)
}

func runCloseDay(ctx context.Context, days *reconcile.Service, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("close-day", flag.ExitOnError)
	date := fs.String("date", "", "business date (YYYY-MM-DD)")
	cash := fs.String("cash", "", "counted cash in the drawer")
	actor := fs.String("actor", "", "manager id recorded as closer")
	notes := fs.String("notes", "", "free-form notes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *date == "" || *cash == "" || *actor == "" {
		fs.Usage()
		return fmt.Errorf("-date, -cash and -actor are required")
	}

	actual, err := decimal.NewFromString(*cash)
	if err != nil {
		return fmt.Errorf("invalid -cash %q: %w", *cash, err)
	}

	dc, err := days.CloseDay(ctx, reconcile.CloseRequest{Date: *date, ActualCash: actual, Notes: *notes}, *actor)
	if err != nil {
		return err
	}

	totals := reconcile.Totals{
		ExpectedCash:  dc.ExpectedCash,
		CardTotal:     dc.CardTotal,
		TotalRevenue:  dc.TotalRevenue,
		TotalTax:      dc.TotalTax,
		TotalTips:     dc.TotalTips,
		TotalDiscount: dc.TotalDiscount,
		Subtotal:      dc.Subtotal,
		OrderCount:    dc.OrderCount,
	}
	return renderTotals(out, dc.BusinessDate+" (closed by "+dc.ClosedBy+")", totals, [][]string{
		{"Actual cash", dc.ActualCash.StringFixed(2)},
		{"Variance", dc.Variance.StringFixed(2)},
	})
}

func renderTotals(out io.Writer, title string, t reconcile.Totals, extra [][]string) error {
	fmt.Fprintln(out, title)

	table := tablewriter.NewTable(out)
	table.Header("Metric", "Amount")
	rows := [][]string{
		{"Orders", fmt.Sprint(t.OrderCount)},
		{"Subtotal", t.Subtotal.StringFixed(2)},
		{"Discounts", t.TotalDiscount.StringFixed(2)},
		{"Tax", t.TotalTax.StringFixed(2)},
		{"Revenue", t.TotalRevenue.StringFixed(2)},
		{"Tips", t.TotalTips.StringFixed(2)},
		{"Card total", t.CardTotal.StringFixed(2)},
		{"Expected cash", t.ExpectedCash.StringFixed(2)},
	}
	for _, row := range append(rows, extra...) {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}
