package testkit

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"vizrec/domain/record"
)

// ShoppingGeneratorConfig configures the shopping order generator
type ShoppingGeneratorConfig struct {
	OrderCount    int       `json:"order_count"`
	ReturnRate    float64   `json:"return_rate"`
	MonthlyGrowth float64   `json:"monthly_growth"` // price drift per month
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	Seed          int64     `json:"seed"`
}

// DefaultShoppingConfig returns sensible defaults for shopping data generation
func DefaultShoppingConfig() ShoppingGeneratorConfig {
	return ShoppingGeneratorConfig{
		OrderCount:    500,
		ReturnRate:    0.08,
		MonthlyGrowth: 0.15,
		StartDate:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
		Seed:          42,
	}
}

// ShoppingFields is the column order of generated orders
var ShoppingFields = []string{"order_id", "order_date", "category", "region", "quantity", "unit_price", "revenue", "returned"}

var (
	shoppingCategories = []string{"Electronics", "Apparel", "Home", "Garden", "Toys"}
	shoppingRegions    = []string{"North", "South", "East", "West"}
	categoryPrice      = map[string]float64{"Electronics": 180, "Apparel": 45, "Home": 70, "Garden": 35, "Toys": 25}
)

// ShoppingDataGenerator generates a flat e-commerce order table with a
// revenue trend over time, category-dependent prices and a few bulk outliers.
type ShoppingDataGenerator struct {
	config ShoppingGeneratorConfig
	rng    *rand.Rand
}

// NewShoppingDataGenerator creates a new shopping data generator
func NewShoppingDataGenerator(config ShoppingGeneratorConfig) *ShoppingDataGenerator {
	return &ShoppingDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate returns the orders sorted by date
func (g *ShoppingDataGenerator) Generate() record.RecordSet {
	span := g.config.EndDate.Sub(g.config.StartDate)
	rows := make([]record.Record, 0, g.config.OrderCount)

	for i := 0; i < g.config.OrderCount; i++ {
		// Evenly spread with jitter keeps the table time-ordered
		offset := time.Duration(float64(span) * (float64(i) + g.rng.Float64()*0.5) / float64(g.config.OrderCount))
		orderDate := g.config.StartDate.Add(offset).Truncate(24 * time.Hour)
		rows = append(rows, g.order(i, orderDate))
	}
	return record.NewRecordSet(ShoppingFields, rows)
}

func (g *ShoppingDataGenerator) order(i int, orderDate time.Time) record.Record {
	category := shoppingCategories[g.rng.Intn(len(shoppingCategories))]
	region := shoppingRegions[g.rng.Intn(len(shoppingRegions))]

	quantity := 1 + g.rng.Intn(4)
	if g.rng.Float64() < 0.02 { // bulk orders
		quantity = 40 + g.rng.Intn(20)
	}

	months := orderDate.Sub(g.config.StartDate).Hours() / (24 * 30)
	growth := math.Pow(1+g.config.MonthlyGrowth, months)
	price := categoryPrice[category] * growth * (0.85 + 0.3*g.rng.Float64())
	price = math.Round(price*100) / 100

	return record.Record{
		"order_id":   record.Text(fmt.Sprintf("order_%05d", i+1)),
		"order_date": record.Time(orderDate),
		"category":   record.Text(category),
		"region":     record.Text(region),
		"quantity":   record.Number(float64(quantity)),
		"unit_price": record.Number(price),
		"revenue":    record.Number(math.Round(float64(quantity)*price*100) / 100),
		"returned":   record.Bool(g.rng.Float64() < g.config.ReturnRate),
	}
}
