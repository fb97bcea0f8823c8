package main

import (
	"encoding/csv"
	"flag"
	"log"
	"os"
	"strings"

	"temix/internal/config"
	"temix/internal/db"
)

type themeRecord struct {
	Category    string
	Title       string
	Description string
}

var knownCategories = map[string]bool{
	"TEXT":  true,
	"IMAGE": true,
	"VIDEO": true,
	"AUDIO": true,
}

func main() {
	filePath := flag.String("file", "themes.csv", "path to themes csv")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}

	conn, err := db.Open(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	records, err := readThemes(*filePath)
	if err != nil {
		log.Fatalf("failed to read themes: %v", err)
	}

	inserted := 0
	for _, record := range records {
		entry := db.Theme{
			Category:    record.Category,
			Title:       record.Title,
			Description: record.Description,
			IsSystem:    true,
		}
		if err := conn.FirstOrCreate(&entry, db.Theme{Category: entry.Category, Title: entry.Title, IsSystem: true}).Error; err != nil {
			log.Fatalf("failed to upsert theme: %v", err)
		}
		inserted++
	}

	log.Printf("loaded %d themes", inserted)
}

func readThemes(path string) ([]themeRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	var records []themeRecord
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) < 2 {
			continue
		}
		category := strings.ToUpper(strings.TrimSpace(row[0]))
		title := strings.TrimSpace(row[1])
		description := ""
		if len(row) > 2 {
			description = strings.TrimSpace(row[2])
		}
		if title == "" || !knownCategories[category] {
			continue
		}
		records = append(records, themeRecord{Category: category, Title: title, Description: description})
	}
	return records, nil
}
