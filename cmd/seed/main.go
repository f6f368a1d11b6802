// Command seed loads reference data (ingredients and tags) from CSV
// fixtures into the database. Rows that already exist are skipped, so the
// command is safe to re-run.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/foodgram-app/backend/config"
	"github.com/foodgram-app/backend/internal/database"
	"github.com/foodgram-app/backend/internal/models"
)

func main() {
	fixturesDir := flag.String("fixtures", "fixtures", "directory containing ingredients.csv and tags.csv")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	if err := seedIngredients(db, filepath.Join(*fixturesDir, "ingredients.csv")); err != nil {
		log.Fatalf("Failed to seed ingredients: %v", err)
	}

	if err := seedTags(db, filepath.Join(*fixturesDir, "tags.csv")); err != nil {
		log.Fatalf("Failed to seed tags: %v", err)
	}
}

// seedIngredients reads headerless rows of (name, measurement_unit).
func seedIngredients(db *gorm.DB, path string) error {
	records, err := readCSV(path)
	if err != nil {
		return err
	}

	ingredients := make([]models.Ingredient, 0, len(records))
	for i, record := range records {
		if len(record) != 2 {
			return fmt.Errorf("%s: row %d: expected 2 fields, got %d", path, i+1, len(record))
		}
		ingredients = append(ingredients, models.Ingredient{
			Name:            record[0],
			MeasurementUnit: record[1],
		})
	}

	if len(ingredients) == 0 {
		return nil
	}

	res := db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&ingredients, 500)
	if res.Error != nil {
		return res.Error
	}
	log.Printf("Seeded %d ingredients from %s", res.RowsAffected, path)
	return nil
}

// seedTags reads headerless rows of (name, color, slug).
func seedTags(db *gorm.DB, path string) error {
	records, err := readCSV(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("No tag fixture at %s, skipping", path)
			return nil
		}
		return err
	}

	tags := make([]models.Tag, 0, len(records))
	for i, record := range records {
		if len(record) != 3 {
			return fmt.Errorf("%s: row %d: expected 3 fields, got %d", path, i+1, len(record))
		}
		tags = append(tags, models.Tag{
			Name:  record[0],
			Color: record[1],
			Slug:  record[2],
		})
	}

	if len(tags) == 0 {
		return nil
	}

	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&tags)
	if res.Error != nil {
		return res.Error
	}
	log.Printf("Seeded %d tags from %s", res.RowsAffected, path)
	return nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}
