package mysql

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Connector struct {
	Address  string
	Database string
	Username string
	Password string
	DB       *gorm.DB
}

func NewConnector(address, database, username, password string) (*Connector, error) {
	link := fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=utf8mb4&parseTime=true&loc=Local",
		username, password, address, database)
	db, err := gorm.Open(mysql.Open(link), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	return &Connector{
		Address:  address,
		Database: database,
		Username: username,
		Password: password,
		DB:       db,
	}, nil
}

func (c *Connector) Close() error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
