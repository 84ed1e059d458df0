package client_test

import (
	"testing"

	"isizulu-corpus/backend/internal/infra/client"

	mysqlcfg "github.com/go-sql-driver/mysql"
)

func TestBuildMySQLDSN(t *testing.T) {
	dsn, err := client.BuildMySQLDSN(client.MySQLConfig{
		Host:     "db.internal",
		Port:     3307,
		Username: "corpus",
		Password: "p@ss:word",
		Database: "isizulu_corpus",
		Params:   "charset=utf8mb4&parseTime=true&loc=UTC",
	})
	if err != nil {
		t.Fatalf("build dsn: %v", err)
	}

	parsed, err := mysqlcfg.ParseDSN(dsn)
	if err != nil {
		t.Fatalf("parse dsn %q: %v", dsn, err)
	}
	if parsed.User != "corpus" || parsed.Passwd != "p@ss:word" {
		t.Fatalf("unexpected credentials: %s/%s", parsed.User, parsed.Passwd)
	}
	if parsed.Addr != "db.internal:3307" || parsed.DBName != "isizulu_corpus" {
		t.Fatalf("unexpected target: %s/%s", parsed.Addr, parsed.DBName)
	}
	if !parsed.ParseTime || parsed.Loc.String() != "UTC" {
		t.Fatalf("unexpected time settings: parseTime=%v loc=%v", parsed.ParseTime, parsed.Loc)
	}
	if parsed.Params["charset"] != "utf8mb4" {
		t.Fatalf("expected charset param, got %v", parsed.Params)
	}
}

func TestBuildMySQLDSNDefaultsAndValidation(t *testing.T) {
	dsn, err := client.BuildMySQLDSN(client.MySQLConfig{Host: "localhost", Username: "root", Database: "corpus"})
	if err != nil {
		t.Fatalf("build dsn: %v", err)
	}
	parsed, err := mysqlcfg.ParseDSN(dsn)
	if err != nil {
		t.Fatalf("parse dsn: %v", err)
	}
	if parsed.Addr != "localhost:3306" || !parsed.ParseTime {
		t.Fatalf("expected default port and params, got addr=%s parseTime=%v", parsed.Addr, parsed.ParseTime)
	}

	for name, cfg := range map[string]client.MySQLConfig{
		"host":     {Username: "root", Database: "corpus"},
		"username": {Host: "localhost", Database: "corpus"},
		"database": {Host: "localhost", Username: "root"},
	} {
		if _, err := client.BuildMySQLDSN(cfg); err == nil {
			t.Fatalf("expected error when %s is missing", name)
		}
	}
}
