package models

import (
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testDBPort = 5544

// testDB is nil when the embedded server could not start; DB-backed tests
// skip themselves in that case
var testDB *gorm.DB

func TestMain(m *testing.M) {
	dataPath, err := os.MkdirTemp("", "lims_models_test")
	if err != nil {
		log.Fatalf("temp dir: %v", err)
	}

	ep := embeddedpostgres.NewDatabase(embeddedpostgres.DefaultConfig().
		DataPath(dataPath).
		Port(testDBPort).
		Database("lims_test").
		Username("postgres").
		Password("postgres"))

	if err := ep.Start(); err != nil {
		log.Printf("embedded postgres unavailable, skipping DB-backed tests: %v", err)
		code := m.Run()
		os.RemoveAll(dataPath)
		os.Exit(code)
	}

	dsn := fmt.Sprintf("host=localhost port=%d user=postgres password=postgres dbname=lims_test sslmode=disable", testDBPort)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		ep.Stop()
		log.Fatalf("connect: %v", err)
	}

	err = db.AutoMigrate(
		&User{}, &ItemType{}, &Location{}, &Tag{}, &AmountMeasure{}, &Set{},
		&Item{}, &ItemProperty{}, &ItemTransfer{},
		&Organism{}, &Order{}, &Project{}, &ProductStatus{}, &Product{},
		&Comment{}, &WorkLog{},
	)
	if err != nil {
		ep.Stop()
		log.Fatalf("migrate: %v", err)
	}

	testDB = db
	code := m.Run()
	ep.Stop()
	os.RemoveAll(dataPath)
	os.Exit(code)
}

func requireDB(t *testing.T) *gorm.DB {
	t.Helper()
	if testDB == nil {
		t.Skip("embedded postgres unavailable")
	}
	return testDB
}

func createItemType(t *testing.T, db *gorm.DB, name string, parentID *uint) *ItemType {
	t.Helper()
	itemType := ItemType{Name: name, ParentID: parentID}
	if err := db.Create(&itemType).Error; err != nil {
		t.Fatalf("create item type %s: %v", name, err)
	}
	return &itemType
}

func TestTreePathMaintenance(t *testing.T) {
	db := requireDB(t)

	reagent := createItemType(t, db, "Reagent", nil)
	enzyme := createItemType(t, db, "Enzyme", &reagent.ID)
	polymerase := createItemType(t, db, "Polymerase", &enzyme.ID)

	if polymerase.Path != "Reagent/Enzyme/Polymerase" {
		t.Errorf("path = %q", polymerase.Path)
	}
	if polymerase.Level != 2 {
		t.Errorf("level = %d, want 2", polymerase.Level)
	}
	if got := polymerase.DisplayName(); got != "---- Polymerase" {
		t.Errorf("DisplayName() = %q", got)
	}
	if got := polymerase.Root(); got != "Reagent" {
		t.Errorf("Root() = %q", got)
	}

	hasChildren, err := reagent.HasChildren(db)
	if err != nil || !hasChildren {
		t.Errorf("HasChildren(root) = %v, %v", hasChildren, err)
	}
	count, err := reagent.DescendantCount(db)
	if err != nil || count != 2 {
		t.Errorf("DescendantCount(root) = %d, %v, want 2", count, err)
	}
	hasChildren, err = polymerase.HasChildren(db)
	if err != nil || hasChildren {
		t.Errorf("HasChildren(leaf) = %v, %v, want false", hasChildren, err)
	}
}

func TestReparentRewritesDescendants(t *testing.T) {
	db := requireDB(t)

	oldRoot := createItemType(t, db, "Consumable", nil)
	mid := createItemType(t, db, "Plasticware", &oldRoot.ID)
	leaf := createItemType(t, db, "Plate", &mid.ID)
	newRoot := createItemType(t, db, "Labware", nil)

	mid.ParentID = &newRoot.ID
	if err := db.Save(mid).Error; err != nil {
		t.Fatalf("reparent: %v", err)
	}

	var reloaded ItemType
	if err := db.First(&reloaded, leaf.ID).Error; err != nil {
		t.Fatalf("reload leaf: %v", err)
	}
	if reloaded.Path != "Labware/Plasticware/Plate" {
		t.Errorf("descendant path after reparent = %q", reloaded.Path)
	}
	if reloaded.Level != 2 {
		t.Errorf("descendant level after reparent = %d", reloaded.Level)
	}
}

func TestRenameRewritesMultibytePaths(t *testing.T) {
	db := requireDB(t)

	// Non-ASCII ancestor names: byte and character offsets differ, and the
	// descendant rewrite must keep the separator intact
	root := createItemType(t, db, "Kühlschrank", nil)
	child := createItemType(t, db, "Fach", &root.ID)
	if child.Path != "Kühlschrank/Fach" {
		t.Fatalf("child path = %q", child.Path)
	}

	root.Name = "Kühlraum"
	if err := db.Save(root).Error; err != nil {
		t.Fatalf("rename root: %v", err)
	}

	var reloaded ItemType
	if err := db.First(&reloaded, child.ID).Error; err != nil {
		t.Fatalf("reload child: %v", err)
	}
	if reloaded.Path != "Kühlraum/Fach" {
		t.Errorf("child path after rename = %q, want %q", reloaded.Path, "Kühlraum/Fach")
	}
	want := []string{"Kühlraum", "Fach"}
	if got := reloaded.AncestorNames(true); len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("AncestorNames = %v, want %v", got, want)
	}
}

func TestCyclicParentRejected(t *testing.T) {
	db := requireDB(t)

	root := createItemType(t, db, "Buffer", nil)
	child := createItemType(t, db, "Wash Buffer", &root.ID)

	root.ParentID = &child.ID
	err := db.Save(root).Error
	if err == nil {
		t.Fatal("cyclic parent assignment was accepted")
	}

	root.ParentID = &root.ID
	if err := db.Save(root).Error; err == nil {
		t.Fatal("self-parenting was accepted")
	}
}

func inventoryFixtures(t *testing.T, db *gorm.DB, suffix string) (User, AmountMeasure, *ItemType) {
	t.Helper()
	user := User{
		Username: "user_" + suffix,
		Email:    suffix + "@example.com",
		Password: "x",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	measure := AmountMeasure{Name: "Measure " + suffix, Symbol: suffix}
	if err := db.Create(&measure).Error; err != nil {
		t.Fatalf("create measure: %v", err)
	}
	itemType := createItemType(t, db, "Type "+suffix, nil)
	return user, measure, itemType
}

func TestLatchPersistsThroughDepletion(t *testing.T) {
	db := requireDB(t)
	user, measure, itemType := inventoryFixtures(t, db, "lt1")

	item := Item{
		Name:            "Latch Item",
		ItemTypeID:      itemType.ID,
		AmountAvailable: 5,
		AmountMeasureID: measure.ID,
		AddedByID:       user.ID,
	}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("create item: %v", err)
	}
	if !item.InInventory {
		t.Fatal("positive amount did not latch in_inventory on create")
	}

	item.AmountAvailable = 0
	if err := db.Save(&item).Error; err != nil {
		t.Fatalf("deplete item: %v", err)
	}

	var reloaded Item
	if err := db.First(&reloaded, item.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reloaded.InInventory {
		t.Error("latch cleared when amount returned to zero")
	}
	if reloaded.AmountAvailable != 0 {
		t.Errorf("amount = %d, want 0", reloaded.AmountAvailable)
	}
}

func TestTransferListingOrder(t *testing.T) {
	db := requireDB(t)
	user, measure, itemType := inventoryFixtures(t, db, "tr1")

	item := Item{
		Name:            "Transfer Item",
		ItemTypeID:      itemType.ID,
		AmountMeasureID: measure.ID,
		AddedByID:       user.ID,
	}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("create item: %v", err)
	}

	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	for i, offset := range []time.Duration{0, 2 * time.Hour, time.Hour} {
		transfer := ItemTransfer{
			ItemID:          item.ID,
			AmountTaken:     i + 1,
			AmountMeasureID: measure.ID,
			DateCreated:     base.Add(offset),
		}
		if err := db.Create(&transfer).Error; err != nil {
			t.Fatalf("create transfer: %v", err)
		}
	}

	var transfers []ItemTransfer
	if err := TransfersNewestFirst(db).Where("item_id = ?", item.ID).Find(&transfers).Error; err != nil {
		t.Fatalf("list transfers: %v", err)
	}
	if len(transfers) != 3 {
		t.Fatalf("got %d transfers", len(transfers))
	}
	for i := 1; i < len(transfers); i++ {
		if transfers[i].DateCreated.After(transfers[i-1].DateCreated) {
			t.Fatalf("transfers not newest-first: %v before %v",
				transfers[i-1].DateCreated, transfers[i].DateCreated)
		}
	}
}

func TestProjectAndProductIdentifiers(t *testing.T) {
	db := requireDB(t)
	user, _, itemType := inventoryFixtures(t, db, "pr1")

	SetProjectNumbering("GM", 100)

	status := ProductStatus{Name: "Added"}
	if err := db.Create(&status).Error; err != nil {
		t.Fatalf("create status: %v", err)
	}

	first := Project{Name: "First Project", PrimaryLabContactID: user.ID}
	if err := db.Create(&first).Error; err != nil {
		t.Fatalf("create project: %v", err)
	}
	if first.Identifier != 100 {
		t.Errorf("first identifier = %d, want 100", first.Identifier)
	}
	if first.ProjectIdentifier != "GM100" {
		t.Errorf("first project_identifier = %q", first.ProjectIdentifier)
	}

	second := Project{Name: "Second Project", PrimaryLabContactID: user.ID}
	if err := db.Create(&second).Error; err != nil {
		t.Fatalf("create project: %v", err)
	}
	if second.Identifier != 101 {
		t.Errorf("second identifier = %d, want 101", second.Identifier)
	}

	for i, want := range []string{"GM100-1", "GM100-2"} {
		product := Product{
			Name:          fmt.Sprintf("Product %d", i+1),
			StatusID:      status.ID,
			ProductTypeID: itemType.ID,
			ProjectID:     first.ID,
		}
		if err := db.Create(&product).Error; err != nil {
			t.Fatalf("create product: %v", err)
		}
		if product.ProductIdentifier != want {
			t.Errorf("product_identifier = %q, want %q", product.ProductIdentifier, want)
		}
	}
}
