package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRequestShowTables(t *testing.T) {
	req := parseRequest("show tables;")
	assert.Equal(t, requestListTables, req.kind)
}

func TestParseRequestShowTableLowercasesName(t *testing.T) {
	req := parseRequest("SHOW TABLE Users;")
	assert.Equal(t, requestTableInfo, req.kind)
	assert.Equal(t, "users", req.tableName)
}

func TestParseRequestShowTableWrongArityFallsBackToSQL(t *testing.T) {
	req := parseRequest("SHOW TABLE;")
	assert.Equal(t, requestSQL, req.kind)
}

func TestParseRequestPlainSQLIsPassedThrough(t *testing.T) {
	req := parseRequest("select * from t;")
	assert.Equal(t, requestSQL, req.kind)
	assert.Equal(t, "select * from t;", req.sql)
}
