package testutil

import (
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"besmart-monitor/lib/telemetry"

	"github.com/mazen160/go-random"
	_ "modernc.org/sqlite"
)

type ServiceParams struct {
	Name string
	// if unspecified, it will skip setting up a db
	DbSchema string
	// if unspecified, it will use `:memory:`
	DbPath string
}

type ServiceResult struct {
	DB *sql.DB
}

func SetupService(t testing.TB, params ServiceParams) (ServiceResult, func()) {
	cleanup := telemetry.SetupForTesting(t, fmt.Sprintf("test:%s", params.Name))

	dbpath := params.DbPath
	if dbpath == "" {
		dbpath = ":memory:"
	}
	sqlite, err := sql.Open("sqlite", dbpath)
	if err != nil {
		t.Fatal(err)
	}
	if params.DbSchema != "" {
		_, err = sqlite.Exec(params.DbSchema)
		if err != nil && !strings.Contains(err.Error(), "already exists") {
			t.Fatal(err)
		}
	}

	return ServiceResult{
		DB: sqlite,
	}, cleanup
}

// RandomOrderId produces a plausible numeric order id for fixtures.
func RandomOrderId(t testing.TB) string {
	id, err := random.IntRange(10000, 99999)
	if err != nil {
		t.Fatal(err)
	}
	return fmt.Sprintf("%d", id)
}

// RandomName produces a short random identifier for fixture customers
// and restaurants.
func RandomName(t testing.TB, prefix string) string {
	suffix, err := random.String(6)
	if err != nil {
		t.Fatal(err)
	}
	return prefix + "-" + suffix
}
