// Package simdb records simulated-stream activity in a ClickHouse database.
package simdb

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// StreamDBConnection holds an open connection (or the error that prevented one).
// All methods are safe to call on a disconnected or nil connection; they do nothing.
type StreamDBConnection struct {
	conn          clickhouse.Conn
	err           error
	activityEntry *StreamActivityMessage
}

const databaseName = "eegsim" // official SQL name of the database

// DefaultAddress is where the ClickHouse server is expected to listen.
const DefaultAddress = "localhost:9000"

// IsConnected says whether the connection is usable.
func (db *StreamDBConnection) IsConnected() bool {
	return (db != nil) && (db.conn != nil) && (db.err == nil)
}

// Err returns the error that broke the connection, if any.
func (db *StreamDBConnection) Err() error {
	if db == nil {
		return nil
	}
	return db.err
}

// StartDBConnection connects to the server at addr and logs the start of the
// activity. A failed connection is returned, not nil, so callers need not check.
func StartDBConnection(addr string, activity *StreamActivityMessage) *StreamDBConnection {
	db := createDBConnection(addr)
	db.activityEntry = activity
	db.logActivity()
	return db
}

// DummyDBConnection returns a connection that records nothing.
func DummyDBConnection() *StreamDBConnection {
	return &StreamDBConnection{err: fmt.Errorf("database not in use")}
}

func createDBConnection(addr string) *StreamDBConnection {
	db := &StreamDBConnection{}
	auth := clickhouse.Auth{
		Database: databaseName,
		Username: os.Getenv("EEGSIM_DB_USER"),
		Password: os.Getenv("EEGSIM_DB_PASSWORD"),
	}
	client := clickhouse.ClientInfo{
		Products: []struct {
			Name    string
			Version string
		}{
			{Name: "eegsim", Version: "unknown"},
		},
	}
	opt := clickhouse.Options{
		Addr:        []string{addr},
		Auth:        auth,
		ClientInfo:  client,
		DialTimeout: 2 * time.Second,
	}
	conn, err := clickhouse.Open(&opt)
	if err != nil {
		db.err = err
		return db
	}
	db.conn = conn

	// Ping the server at the DB connection.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err = conn.Ping(ctx); err != nil {
		if exception, ok := err.(*clickhouse.Exception); ok {
			fmt.Printf("Exception [%d] %s \n%s\n", exception.Code, exception.Message, exception.StackTrace)
		}
		db.err = err
		conn.Close()
		db.conn = nil
	}
	return db
}

func (db *StreamDBConnection) logActivity() {
	if !db.IsConnected() || db.activityEntry == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	const nowait = false
	ae := db.activityEntry
	formattedStart := ae.Start.Format("2006-01-02 15:04:05.000000")
	formattedEnd := ae.End.Format("2006-01-02 15:04:05.000000")
	if err := db.conn.AsyncInsert(ctx, `INSERT INTO streamactivity VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, nowait,
		ae.ID, ae.Hostname, ae.Githash, ae.Version, ae.GoVersion, ae.CPUs,
		ae.StreamName, ae.Nchannels, ae.SampleRate, ae.Samples, ae.ExitStatus,
		formattedStart, formattedEnd,
	); err != nil {
		fmt.Println("Error raised on AsyncInsert into streamactivity ", err)
		db.err = err
	}
}

// Disconnect logs the end of the activity and closes the connection.
func (db *StreamDBConnection) Disconnect(samples uint64, exitStatus string) {
	if !db.IsConnected() {
		return
	}
	db.activityEntry.End = time.Now()
	db.activityEntry.Samples = samples
	db.activityEntry.ExitStatus = exitStatus
	db.logActivity()
	db.conn.Close()
	db.conn = nil
}
