package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	infracache "github.com/coinwatch/coinwatch/infra/cache"
	"github.com/coinwatch/coinwatch/infra/coingecko"
	"github.com/coinwatch/coinwatch/pkg/catalog"
	"github.com/coinwatch/coinwatch/pkg/convert"
	"github.com/coinwatch/coinwatch/pkg/rates"
	"github.com/fatih/color"
)

func main() {
	if len(os.Args) < 4 {
		fmt.Println("Usage: cli <from> <to> <amount>")
		fmt.Println("Example: cli btc try 0.5")
		return
	}

	from, to := os.Args[1], os.Args[2]
	amount, err := strconv.ParseFloat(os.Args[3], 64)
	if err != nil || amount < 0 {
		fmt.Println("Invalid amount:", os.Args[3])
		return
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	source := coingecko.New("https://api.coingecko.com/api/v3", os.Getenv("COINGECKO_API_KEY"), 10*time.Second, logger)
	cat := catalog.New(source, logger)
	engine := rates.New(source, cat, infracache.NewMemoryCache(), rates.Config{}, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	rate, err := engine.Resolve(ctx, from, to)
	if err != nil {
		color.Red("Conversion failed: %v", err)
		os.Exit(1)
	}

	result := convert.Apply(rate, amount)
	color.Green("%s %s = %s %s", convert.FormatAmount(amount), rate.From, convert.FormatAmount(result), rate.To)
	color.Cyan("rate: 1 %s = %s %s (source: %s)", rate.From, convert.FormatAmount(rate.Rate), rate.To, rate.Source)
}
