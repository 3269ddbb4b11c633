package seeds

import (
	"log"

	"gorm.io/gorm"

	"schoolku_backend/internals/seeds/students"
)

// RunAllSeeds hanya dipanggil kalau DB_SEED_FILE diset (lokal/staging).
func RunAllSeeds(db *gorm.DB, path string) {
	if path == "" {
		return
	}
	schools, err := students.LoadSeedFile(path)
	if err != nil {
		log.Printf("❌ Seed dilewati: %v", err)
		return
	}
	students.SeedSchools(db, schools)
}
