package config

import (
	"fmt"
	"log"
	"sync"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
)

var (
	dbConn *gorm.DB
	dbOnce sync.Once
)

// dialectorForDriver builds the driver-specific DSN from the loaded config.
func dialectorForDriver() gorm.Dialector {
	switch DBDriver {
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			DBUser, DBPassword, DBHost, DBPort, DBName)
		return mysql.Open(dsn)
	case "mssql":
		dsn := "sqlserver://" + DBUser + ":" + DBPassword + "@" + DBHost + ":" + DBPort + "?database=" + DBName
		return sqlserver.Open(dsn)
	default:
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			DBHost, DBUser, DBPassword, DBName, DBPort)
		return postgres.Open(dsn)
	}
}

// ConnectDB opens (once) and returns the application database connection.
func ConnectDB() (*gorm.DB, error) {
	var err error
	dbOnce.Do(func() {
		dbConn, err = gorm.Open(dialectorForDriver(), &gorm.Config{})
		if err != nil {
			log.Println("Error connecting to database:", err)
			return
		}
		fmt.Println("Connected to database:", DBName)
	})
	if dbConn == nil {
		return nil, err
	}
	return dbConn, nil
}
