package executor

import (
	"github.com/quarrydb/quarry/internal/sql/engine"
	"github.com/quarrydb/quarry/internal/sql/plan"
)

func executeCreateTable(n *plan.CreateTableNode, txn engine.Transaction) (ResultSet, error) {
	if err := txn.CreateTable(n.Schema); err != nil {
		return ResultSet{}, err
	}
	return ResultSet{Kind: KindCreateTable, TableName: n.Schema.Name}, nil
}

func executeDropTable(n *plan.DropTableNode, txn engine.Transaction) (ResultSet, error) {
	if err := txn.DropTable(n.Name); err != nil {
		return ResultSet{}, err
	}
	return ResultSet{Kind: KindDropTable, TableName: n.Name}, nil
}
