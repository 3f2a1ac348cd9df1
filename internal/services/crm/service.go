package crm

import (
	"encoding/json"
	"log"
	"time"

	"github.com/getlims/limsgo/internal/database"
	"github.com/getlims/limsgo/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm/clause"
)

// SyncService keeps the local CRM mirrors in step with the external CRM.
// The CRM stays authoritative; this only pulls.
type SyncService struct {
	client *Client
	db     *database.DB
	cfg    Config
	stop   chan struct{}
}

// Config holds CRM gateway connection settings
type Config struct {
	URL          string
	Database     string
	Username     string
	Password     string
	SyncInterval int // in minutes
}

// NewSyncService creates a new synchronization service
func NewSyncService(db *database.DB, cfg Config) *SyncService {
	return &SyncService{
		client: NewClient(cfg.URL, cfg.Database, cfg.Username, cfg.Password),
		db:     db,
		cfg:    cfg,
		stop:   make(chan struct{}),
	}
}

// Start begins the background synchronization loop
func (s *SyncService) Start() {
	if s.cfg.URL == "" {
		log.Println("CRM sync disabled: CRM_GATEWAY_URL not configured")
		return
	}

	go func() {
		log.Println("CRM sync service started")

		if _, err := s.client.Authenticate(); err != nil {
			log.Printf("CRM authentication failed: %v", err)
			return
		}

		// Initial sync delay
		time.Sleep(5 * time.Second)
		s.RunFullSync()

		interval := time.Duration(s.cfg.SyncInterval) * time.Minute
		if s.cfg.SyncInterval <= 0 {
			interval = 15 * time.Minute
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.RunFullSync()
			case <-s.stop:
				log.Println("CRM sync service stopped")
				return
			}
		}
	}()
}

// Stop halts the service
func (s *SyncService) Stop() {
	close(s.stop)
}

// RunFullSync refreshes all mirrors. Order matters: accounts first, then
// projects, then quotes, so foreign keys resolve.
func (s *SyncService) RunFullSync() {
	log.Println("CRM: starting full sync...")
	s.syncAccounts()
	s.syncProjects()
	s.syncQuotes()
	log.Println("CRM: full sync completed")
}

func (s *SyncService) syncAccounts() {
	raw, err := s.client.SearchReadRaw("crm.account", nil, []string{
		"contact_identifier", "account_identifier", "account_name",
	}, 1000, 0)
	if err != nil {
		log.Printf("CRM sync error (accounts): %v", err)
		return
	}

	count := 0
	for _, rec := range raw {
		account := models.CRMAccount{
			ContactIdentifier: getString(rec, "contact_identifier"),
			AccountIdentifier: getString(rec, "account_identifier"),
			AccountName:       getString(rec, "account_name"),
			RawData:           rawJSON(rec),
			LastSyncedAt:      time.Now(),
		}
		if account.AccountIdentifier == "" {
			continue
		}
		err := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "account_identifier"}},
			DoUpdates: clause.AssignmentColumns([]string{"contact_identifier", "account_name", "raw_data", "last_synced_at"}),
		}).Create(&account).Error
		if err != nil {
			log.Printf("CRM sync error (account %s): %v", account.AccountIdentifier, err)
			continue
		}
		count++
	}
	log.Printf("CRM: synced %d accounts", count)
}

func (s *SyncService) syncProjects() {
	raw, err := s.client.SearchReadRaw("crm.project", nil, []string{
		"project_identifier", "name", "description", "date_created", "account_identifier",
	}, 1000, 0)
	if err != nil {
		log.Printf("CRM sync error (projects): %v", err)
		return
	}

	count := 0
	for _, rec := range raw {
		var account models.CRMAccount
		if err := s.db.Where("account_identifier = ?", getString(rec, "account_identifier")).
			First(&account).Error; err != nil {
			log.Printf("CRM: skipping project %s, unknown account %s",
				getString(rec, "project_identifier"), getString(rec, "account_identifier"))
			continue
		}

		project := models.CRMProject{
			ProjectIdentifier: getString(rec, "project_identifier"),
			Name:              getString(rec, "name"),
			Description:       getString(rec, "description"),
			DateCreated:       getTime(rec, "date_created"),
			AccountID:         account.ID,
			RawData:           rawJSON(rec),
			LastSyncedAt:      time.Now(),
		}
		if project.ProjectIdentifier == "" {
			continue
		}
		err := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "project_identifier"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "description", "date_created", "account_id", "raw_data", "last_synced_at"}),
		}).Create(&project).Error
		if err != nil {
			log.Printf("CRM sync error (project %s): %v", project.ProjectIdentifier, err)
			continue
		}
		count++
	}
	log.Printf("CRM: synced %d projects", count)
}

func (s *SyncService) syncQuotes() {
	raw, err := s.client.SearchReadRaw("crm.quote", nil, []string{
		"quote_identifier", "quote_number", "quote_name", "subtotal", "discount", "total", "project_identifier",
	}, 1000, 0)
	if err != nil {
		log.Printf("CRM sync error (quotes): %v", err)
		return
	}

	count := 0
	for _, rec := range raw {
		var project models.CRMProject
		if err := s.db.Where("project_identifier = ?", getString(rec, "project_identifier")).
			First(&project).Error; err != nil {
			log.Printf("CRM: skipping quote %s, unknown project %s",
				getString(rec, "quote_identifier"), getString(rec, "project_identifier"))
			continue
		}

		quote := models.CRMQuote{
			QuoteIdentifier: getString(rec, "quote_identifier"),
			QuoteNumber:     getString(rec, "quote_number"),
			QuoteName:       getString(rec, "quote_name"),
			Subtotal:        getFloat(rec, "subtotal"),
			Total:           getFloat(rec, "total"),
			ProjectID:       project.ID,
			RawData:         rawJSON(rec),
			LastSyncedAt:    time.Now(),
		}
		if d, ok := rec["discount"].(float64); ok {
			quote.Discount = &d
		}
		if quote.QuoteIdentifier == "" {
			continue
		}
		err := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "quote_identifier"}},
			DoUpdates: clause.AssignmentColumns([]string{"quote_number", "quote_name", "subtotal", "discount", "total", "project_id", "raw_data", "last_synced_at"}),
		}).Create(&quote).Error
		if err != nil {
			log.Printf("CRM sync error (quote %s): %v", quote.QuoteIdentifier, err)
			continue
		}
		count++
	}
	log.Printf("CRM: synced %d quotes", count)
}

func getString(rec map[string]interface{}, key string) string {
	v, _ := rec[key].(string)
	return v
}

func getFloat(rec map[string]interface{}, key string) float64 {
	switch v := rec[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

func getTime(rec map[string]interface{}, key string) time.Time {
	s, _ := rec[key].(string)
	if s == "" {
		return time.Time{}
	}
	// Gateway timestamps come as "2006-01-02 15:04:05"
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func rawJSON(rec map[string]interface{}) datatypes.JSON {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil
	}
	return datatypes.JSON(data)
}
