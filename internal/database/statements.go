package database

import (
	"database/sql"
	"fmt"
)

func (s *SQLClient) prepareStmt(name, query string) (*sql.Stmt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if stmt, ok := s.statements[name]; ok {
		return stmt, nil
	}

	stmt, err := s.db.Prepare(query)
	if err != nil {
		return nil, fmt.Errorf("prepare statement [%s]: %w", name, err)
	}

	s.statements[name] = stmt
	return stmt, nil
}

func (s *SQLClient) closeStmt() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name, stmt := range s.statements {
		_ = stmt.Close()
		delete(s.statements, name)
	}
}

func (s *SQLClient) stmtCountParcels() (*sql.Stmt, error) {
	query := `SELECT COUNT(*) FROM massar_parcels WHERE order_id = ?`
	return s.prepareStmt("countParcels", query)
}

func (s *SQLClient) stmtInsertParcel() (*sql.Stmt, error) {
	query := `INSERT INTO massar_parcels 
                   (order_id, parcel_reference, barcode, pck_code, created_at)
                   VALUES (?, ?, ?, ?, ?)`
	return s.prepareStmt("insertParcel", query)
}

func (s *SQLClient) stmtSelectParcel() (*sql.Stmt, error) {
	query := `SELECT
			order_id,
			parcel_reference,
			barcode,
			pck_code,
			created_at
		 FROM massar_parcels
		 WHERE order_id = ?
		 LIMIT 1`
	return s.prepareStmt("selectParcel", query)
}
