package dqm

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	sqlx "github.com/jmoiron/sqlx" //make alias name the package to sqlx
	_ "github.com/lib/pq"
)

func ConnectToDatabase(driver string, user string, pass string, host string, dbname string) (*sqlx.DB, error) {
	dbURI, err := databaseURI(driver, user, pass, host, dbname)
	if err != nil {
		return nil, err
	}
	db, err := sqlx.Connect(driver, dbURI)
	return db, err
}

func databaseURI(driver string, user string, pass string, host string, dbname string) (string, error) {
	switch driver {
	case "mysql":
		port := "3306"
		return fmt.Sprintf("%s:%s@(%s:%s)/%s?parseTime=true", user, pass, host, port, dbname), nil
	case "postgres":
		port := "5432"
		return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, pass, host, port, dbname), nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

type ChannelMappingEntry struct {
	ChannelID uint32 `db:"ChannelID"`
	DccID     int    `db:"DccID"`
	IX        int    `db:"IX"`
	IY        int    `db:"IY"`
}

const channelMappingQuery = "SELECT ChannelID, DccID, IX, IY FROM EcalChannelMapping WHERE MinRun <= ? AND MaxRun >= ? ORDER BY ChannelID"

func LoadChannelMap(db *sqlx.DB, runNumber int) (*DBGeometry, error) {
	query := db.Rebind(channelMappingQuery)
	if configuration.Verbosity > 0 {
		logger.Info(fmt.Sprintf("Reading channel mapping for run %d from database", runNumber), "database")
	}
	if configuration.Verbosity > 2 {
		message := fmt.Sprintf("Query: %s", query)
		logger.Info(message, "database")
	}

	rows, err := db.Queryx(query, runNumber, runNumber)
	if err != nil {
		errMessage := fmt.Errorf("error querying database: %w", err)
		return nil, errMessage
	}
	defer rows.Close()

	geometry := &DBGeometry{
		RunNumber: runNumber,
		Channels:  make(map[ChannelID]ChannelLocation),
	}
	for rows.Next() {
		result := ChannelMappingEntry{}
		err := rows.StructScan(&result)
		if err != nil {
			errMessage := fmt.Errorf("error scanning DB row: %w", err)
			return nil, errMessage
		}
		id := ChannelID(result.ChannelID)
		geometry.Channels[id] = ChannelLocation{
			Subdet: id.Subdet(),
			Dcc:    result.DccID,
			IX:     result.IX,
			IY:     result.IY,
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading DB rows: %w", err)
	}

	if configuration.Verbosity > 0 {
		logger.Info(fmt.Sprintf("Channel mapping: %d channels", len(geometry.Channels)), "database")
	}
	return geometry, nil
}
