package main

import (
	"fmt"
	"log"
	"time"

	"github.com/getlims/limsgo/internal/config"
	"github.com/getlims/limsgo/internal/database"
	"github.com/getlims/limsgo/internal/models"
	"github.com/getlims/limsgo/internal/utils"
)

func main() {
	fmt.Println("LIMS Demo Data Seeder")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	fmt.Println("Connected to database")

	fmt.Println("Running database migrations...")
	err = db.AutoMigrate(
		&models.User{},
		&models.ItemType{},
		&models.Location{},
		&models.Tag{},
		&models.AmountMeasure{},
		&models.Set{},
		&models.Item{},
		&models.ItemProperty{},
		&models.ItemTransfer{},
		&models.Organism{},
		&models.Project{},
		&models.ProductStatus{},
		&models.Product{},
	)
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	models.SetProjectNumbering(cfg.Projects.IdentifierPrefix, cfg.Projects.IdentifierStart)

	var itemCount int64
	db.Model(&models.Item{}).Count(&itemCount)
	if itemCount > 0 {
		fmt.Printf("Database already has %d items. Clear it first? (y/N): ", itemCount)
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("Aborted. Database not modified.")
			return
		}
		db.Exec("DELETE FROM item_transfers")
		db.Exec("DELETE FROM item_properties")
		db.Exec("DELETE FROM item_tags")
		db.Exec("DELETE FROM item_sets")
		db.Exec("DELETE FROM item_derivations")
		db.Exec("DELETE FROM items")
	}

	// Staff user
	password, err := utils.HashPassword("demo1234")
	if err != nil {
		log.Fatalf("Failed to hash demo password: %v", err)
	}
	admin := models.User{
		Username: "labadmin",
		Email:    "labadmin@example.com",
		Password: password,
		Name:     "Lab Admin",
		Role:     models.RoleStaff,
	}
	db.Where("username = ?", admin.Username).FirstOrCreate(&admin, models.User{Username: admin.Username})
	fmt.Println("Seeded staff user: labadmin / demo1234")

	// Units of measure
	measures := []models.AmountMeasure{
		{Name: "Microlitre", Symbol: "uL"},
		{Name: "Millilitre", Symbol: "mL"},
		{Name: "Microgram", Symbol: "ug"},
		{Name: "Nanogram", Symbol: "ng"},
		{Name: "Items", Symbol: "item"},
	}
	for i := range measures {
		db.Where("symbol = ?", measures[i].Symbol).FirstOrCreate(&measures[i], models.AmountMeasure{Symbol: measures[i].Symbol})
	}
	fmt.Printf("Seeded %d measures\n", len(measures))

	// Item type taxonomy
	reagent := seedItemType(db, "Reagent", nil)
	enzyme := seedItemType(db, "Enzyme", &reagent.ID)
	polymerase := seedItemType(db, "Polymerase", &enzyme.ID)
	seedItemType(db, "Ligase", &enzyme.ID)
	consumable := seedItemType(db, "Consumable", nil)
	seedItemType(db, "Plate", &consumable.ID)
	construct := seedItemType(db, "DNA Construct", nil)
	fmt.Println("Seeded item type taxonomy")

	// Storage tree
	building := seedLocation(db, "Main Lab", nil, nil)
	freezer := seedLocation(db, "Freezer 2", strPtr("FRZ2"), &building.ID)
	shelf := seedLocation(db, "Shelf A", nil, &freezer.ID)
	fmt.Println("Seeded storage locations")

	// Tags
	tagNames := []string{"pcr", "cloning", "validated"}
	tags := make([]models.Tag, 0, len(tagNames))
	for _, name := range tagNames {
		var tag models.Tag
		db.Where("name = ?", name).FirstOrCreate(&tag, models.Tag{Name: name})
		tags = append(tags, tag)
	}

	// Inventory items
	taq := models.Item{
		Name:            "Taq Polymerase",
		Identifier:      strPtr("ENZ-0001"),
		ItemTypeID:      polymerase.ID,
		AmountAvailable: 500,
		AmountMeasureID: measures[0].ID,
		LocationID:      &shelf.ID,
		AddedByID:       admin.ID,
		Tags:            []models.Tag{tags[0], tags[2]},
	}
	db.Where("identifier = ?", *taq.Identifier).FirstOrCreate(&taq)

	backbone := models.Item{
		Name:            "pUC19 Backbone",
		Identifier:      strPtr("CON-0001"),
		ItemTypeID:      construct.ID,
		AmountAvailable: 80,
		AmountMeasureID: measures[3].ID,
		LocationID:      &freezer.ID,
		AddedByID:       admin.ID,
		Tags:            []models.Tag{tags[1]},
		Properties: []models.ItemProperty{
			{Name: "concentration", Value: "50 ng/uL"},
			{Name: "antibiotic resistance", Value: "ampicillin"},
		},
	}
	db.Where("identifier = ?", *backbone.Identifier).FirstOrCreate(&backbone)

	derived := models.Item{
		Name:            "pUC19-GFP Assembly",
		Identifier:      strPtr("CON-0002"),
		ItemTypeID:      construct.ID,
		AmountAvailable: 25,
		AmountMeasureID: measures[3].ID,
		LocationID:      &freezer.ID,
		AddedByID:       admin.ID,
		CreatedFrom:     []models.Item{backbone},
	}
	db.Where("identifier = ?", *derived.Identifier).FirstOrCreate(&derived)
	fmt.Println("Seeded inventory items")

	// A couple of transfers against the polymerase
	transfers := []models.ItemTransfer{
		{ItemID: taq.ID, AmountTaken: 20, AmountMeasureID: measures[0].ID, RunIdentifier: "RUN-001", Barcode: "PLT0001", Coordinates: "A1", TransferComplete: true},
		{ItemID: taq.ID, AmountTaken: 15, AmountMeasureID: measures[0].ID, RunIdentifier: "RUN-002", Barcode: "PLT0002", Coordinates: "B4"},
	}
	for i := range transfers {
		db.Create(&transfers[i])
		time.Sleep(10 * time.Millisecond)
	}
	fmt.Printf("Seeded %d transfers\n", len(transfers))

	// Product statuses
	for _, name := range []string{"Added", "In Progress", "Completed", "Shipped"} {
		var status models.ProductStatus
		db.Where("name = ?", name).FirstOrCreate(&status, models.ProductStatus{Name: name})
	}

	// Organisms
	for _, org := range []models.Organism{
		{Name: "Escherichia coli", CommonName: "E. coli"},
		{Name: "Saccharomyces cerevisiae", CommonName: "Baker's yeast"},
	} {
		db.Where("name = ?", org.Name).FirstOrCreate(&org, models.Organism{Name: org.Name})
	}

	fmt.Println("Done.")
}

func seedItemType(db *database.DB, name string, parentID *uint) models.ItemType {
	var itemType models.ItemType
	itemType.Name = name
	itemType.ParentID = parentID
	db.Where("name = ?", name).FirstOrCreate(&itemType, models.ItemType{Name: name})
	return itemType
}

func seedLocation(db *database.DB, name string, code *string, parentID *uint) models.Location {
	var location models.Location
	db.Where("name = ?", name).Attrs(models.Location{Code: code, ParentID: parentID}).
		FirstOrCreate(&location, models.Location{Name: name})
	return location
}

func strPtr(s string) *string {
	return &s
}
