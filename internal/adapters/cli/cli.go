// Package cli is the one-shot terminal adapter: it logs in with credentials
// from the environment, runs a single command against the remote API, and
// exits. It shares the entity manager, composer catalogs, and invoice
// generator with the web adapter.
package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"backoffice/internal/api"
	"backoffice/internal/config"
	"backoffice/internal/invoice"
	"backoffice/internal/manager"
	"backoffice/internal/schema"
)

// Run executes one CLI command. args is os.Args[1:]; the first element is
// the subcommand name.
func Run(ctx context.Context, cfg *config.Config, args []string) {
	if len(args) == 0 {
		log.Fatal("Usage: cli <vendors|customers|products|sales|stock|stats|invoice> [args]")
	}

	session := api.NewSession()
	client := api.NewClient(cfg.APIBaseURL, session)
	if _, err := client.Login(ctx, cfg.CLIUsername, cfg.CLIPassword); err != nil {
		log.Fatalf("login: %v", err)
	}

	switch args[0] {
	case "vendors", "customers", "products":
		sch, _ := schema.BySlug(args[0])
		printEntityTable(ctx, client, session, sch, cfg.CurrencySymbol)

	case "sales":
		printSales(ctx, client, cfg.CurrencySymbol)

	case "stock":
		printStock(ctx, client, cfg.CurrencySymbol)

	case "stats":
		printStats(ctx, client, cfg.CurrencySymbol)

	case "invoice":
		if len(args) < 2 {
			log.Fatal("Usage: cli invoice <sale-id>")
		}
		writeInvoice(ctx, client, args[1], cfg.CurrencySymbol)

	default:
		log.Fatalf("Unknown command: %s\nAvailable: vendors, customers, products, sales, stock, stats, invoice", args[0])
	}
}

// printEntityTable mounts the schema-driven manager and renders its table,
// reference lookups included, minus the web-only actions column.
func printEntityTable(ctx context.Context, client *api.Client, session *api.Session, sch schema.Schema, symbol string) {
	m := manager.New(client, session, sch, symbol)
	m.Mount(ctx)

	columns := make([]string, 0, len(sch.Fields))
	for _, f := range sch.Fields {
		columns = append(columns, f.Label)
	}
	rows := make([][]string, 0, len(m.Records()))
	for _, rec := range m.Records() {
		rows = append(rows, m.Row(rec))
	}
	printTable(sch.Plural, columns, rows)
}

func printSales(ctx context.Context, client *api.Client, symbol string) {
	sales, err := client.Sales(ctx)
	if err != nil {
		log.Fatalf("list sales: %v", err)
	}
	rows := make([][]string, 0, len(sales))
	for i := range sales {
		s := &sales[i]
		rows = append(rows, []string{
			invoice.Reference(s),
			s.CustomerName,
			strconv.Itoa(len(s.Items)),
			manager.FormatCurrency(symbol, s.TotalAmount),
			s.CreatedAt.Format("2006-01-02"),
		})
	}
	printTable("Sales", []string{"REF", "CUSTOMER", "ITEMS", "TOTAL", "DATE"}, rows)
}

func printStock(ctx context.Context, client *api.Client, symbol string) {
	report, err := client.Stock(ctx)
	if err != nil {
		log.Fatalf("stock report: %v", err)
	}
	rows := make([][]string, 0, len(report.Products))
	for _, p := range report.Products {
		rows = append(rows, []string{
			p.ProductName,
			strconv.Itoa(p.Quantity),
			manager.FormatCurrency(symbol, p.PurchasePrice),
			manager.FormatCurrency(symbol, p.SellingPrice),
			manager.FormatCurrency(symbol, p.StockValue),
		})
	}
	printTable("Stock Valuation", []string{"PRODUCT", "QTY", "PURCHASE", "SELLING", "VALUE"}, rows)
	fmt.Printf("\n  Total stock value: %s\n", manager.FormatCurrency(symbol, report.TotalStockValue))
}

func printStats(ctx context.Context, client *api.Client, symbol string) {
	stats, err := client.DashboardStats(ctx)
	if err != nil {
		log.Fatalf("dashboard stats: %v", err)
	}
	printKV("Dashboard", [][2]string{
		{"Total sales", manager.FormatCurrency(symbol, stats.TotalSales)},
		{"Stock value", manager.FormatCurrency(symbol, stats.TotalStockValue)},
		{"Purchase value", manager.FormatCurrency(symbol, stats.TotalPurchaseValue)},
		{"Vendors", strconv.Itoa(stats.VendorsCount)},
		{"Customers", strconv.Itoa(stats.CustomersCount)},
		{"Products", strconv.Itoa(stats.ProductsCount)},
	})
}

// writeInvoice generates the invoice document for a persisted sale and
// writes it to the working directory under its deterministic name.
func writeInvoice(ctx context.Context, client *api.Client, saleID, symbol string) {
	sale, err := client.Sale(ctx, saleID)
	if err != nil {
		log.Fatalf("load sale: %v", err)
	}
	company, err := client.Company(ctx)
	if err != nil {
		log.Fatalf("load company: %v", err)
	}
	doc, err := invoice.Generate(sale, company, symbol)
	if err != nil {
		log.Fatalf("generate invoice: %v", err)
	}
	name := invoice.Filename(sale)
	if err := os.WriteFile(name, doc, 0o644); err != nil {
		log.Fatalf("write %s: %v", name, err)
	}
	fmt.Printf("Wrote %s\n", name)
}
