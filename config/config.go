package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"foodpos-api/models"

	"github.com/cockroachdb/errors"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// App holds the process configuration. main reloads it after .env is read.
var App = Load()

type Config struct {
	Port      string
	GinMode   string
	DBDriver  string
	DBDSN     string
	JWTSecret []byte
	UploadDir string
	// TaxRate applies to (subtotal - discount) when the client sends no tax.
	TaxRate      decimal.Decimal
	StrictTotals bool
	CORSOrigins  []string
	Seed         bool
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

// Load reads configuration from the environment
func Load() Config {
	rate, err := decimal.NewFromString(getEnv("TAX_RATE", "0"))
	if err != nil || rate.IsNegative() {
		log.Printf("Ignoring invalid TAX_RATE %q", os.Getenv("TAX_RATE"))
		rate = decimal.Zero
	}

	var origins []string
	for _, o := range strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	return Config{
		Port:         getEnv("PORT", "8080"),
		GinMode:      os.Getenv("GIN_MODE"),
		DBDriver:     getEnv("DB_DRIVER", "sqlite"),
		DBDSN:        getEnv("DB_DSN", "foodpos.db"),
		JWTSecret:    []byte(getEnv("JWT_SECRET", "foodpos_secret_key_2024")),
		UploadDir:    getEnv("UPLOAD_DIR", "uploads"),
		TaxRate:      rate,
		StrictTotals: getBool("STRICT_TOTALS", false),
		CORSOrigins:  origins,
		Seed:         getBool("SEED", true),
	}
}

// SQLiteDSN adds the connection options every sqlite handle needs unless
// dsn already sets them. Transactions begin IMMEDIATE so a writer takes
// the write lock up front and competing writers wait out busy_timeout
// instead of failing a read-to-write lock upgrade with SQLITE_BUSY.
func SQLiteDSN(dsn string) string {
	var opts []string
	if !strings.Contains(dsn, "_txlock=") {
		opts = append(opts, "_txlock=immediate")
	}
	if !strings.Contains(dsn, "busy_timeout") {
		opts = append(opts, "_pragma=busy_timeout(5000)")
	}
	if !strings.Contains(dsn, "foreign_keys") {
		opts = append(opts, "_pragma=foreign_keys(1)")
	}
	if len(opts) == 0 {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(opts, "&")
}

// Open connects to the database selected by driver ("sqlite" or "mysql").
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite", "":
		dialector = sqlite.Open(SQLiteDSN(dsn))
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		return nil, errors.Newf("unsupported DB_DRIVER %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(log.New(os.Stdout, "\r\n", log.LstdFlags), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open %s database", driver)
	}
	return db, nil
}

// Migrate creates or updates all tables
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Food{},
		&models.Transaction{},
		&models.TransactionLine{},
	)
}

func InitDB() {
	var err error
	DB, err = Open(App.DBDriver, App.DBDSN)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err = Migrate(DB); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	log.Printf("Database (%s) connected and migrated successfully", App.DBDriver)
}
