//go:build ignore

package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"

	"github.com/klauspost/pgzip"
)

// generateSampleItems writes a gzipped seed file for `orderapp init`.
//
//	go run scripts/generate_sample_items.go -out data/seed/items.csv.gz -n 200
func main() {
	out := flag.String("out", "data/seed/items.csv.gz", "output file")
	n := flag.Int("n", 100, "number of items")
	seed := flag.Int64("seed", 1, "random seed")
	flag.Parse()

	if err := os.MkdirAll(filepath.Dir(*out), 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	if err := createItemsFile(*out, *n, rand.New(rand.NewSource(*seed))); err != nil {
		log.Fatalf("Failed to create %s: %v", *out, err)
	}

	fmt.Printf("Created %s with %d items\n", *out, *n)
	fmt.Printf("\nSeed it with: SEED_FILE=%s orderapp init\n", *out)
}

var (
	adjectives = []string{"Fresh", "Organic", "Classic", "Premium", "Smoked", "Spicy", "Sweet", "Wholegrain"}
	products   = []string{"Milk", "Bread", "Cheese", "Coffee", "Tea", "Honey", "Olive Oil", "Pasta", "Rice", "Chocolate"}
)

func createItemsFile(filePath string, n int, rnd *rand.Rand) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := pgzip.NewWriter(file)
	defer gzipWriter.Close()

	w := csv.NewWriter(gzipWriter)
	if err := w.Write([]string{"item_name", "price", "quantity"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i := 0; i < n; i++ {
		name := fmt.Sprintf("%s %s %d", adjectives[rnd.Intn(len(adjectives))], products[rnd.Intn(len(products))], i+1)
		price := strconv.FormatFloat(float64(rnd.Intn(50000)+50)/100, 'f', 2, 64)
		// Roughly one item in ten starts out of stock.
		stock := 0
		if rnd.Intn(10) > 0 {
			stock = rnd.Intn(200) + 1
		}

		if err := w.Write([]string{name, price, strconv.Itoa(stock)}); err != nil {
			return fmt.Errorf("failed to write item: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}
