// Command seed populates the Carelog database with demo data.
package main

import (
	"flag"
	"log"

	"carelog/internal/config"
	"carelog/internal/database"
	"carelog/internal/seed"
)

func main() {
	numDoctors := flag.Int("doctors", 10, "Number of doctor accounts to create")
	numPatients := flag.Int("patients", 40, "Number of patient accounts to create")
	numPosts := flag.Int("posts", 120, "Number of blog posts to create")
	draftShare := flag.Float64("draft-share", 0.2, "Fraction of posts left as drafts")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	preset := flag.String("preset", "", "Apply a named preset instead of the flags (e.g. Demo)")
	presetFile := flag.String("preset-file", "", "Optional YAML file with extra presets")
	flag.Parse()

	log.Println("Database Seeder")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if *preset != "" {
		log.Printf("Applying preset: %s (ignoring other flags)", *preset)
		if err := seed.ApplyPreset(db, *presetFile, *preset); err != nil {
			log.Fatalf("Preset seeding failed: %v", err)
		}
	} else {
		if err := seed.Seed(db, seed.Options{
			NumDoctors:  *numDoctors,
			NumPatients: *numPatients,
			NumPosts:    *numPosts,
			DraftShare:  *draftShare,
			ShouldClean: *shouldClean,
		}); err != nil {
			log.Fatalf("Seeding failed: %v", err)
		}
	}

	log.Printf("All done. Every generated account uses the password %q.", seed.SeedPassword)
}
