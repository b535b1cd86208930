package database

import (
	"fmt"
	"log"

	"reversal-alert-bot/internal/types"
)

// InsertAlertHistory records a fired reversal for auditing.
func InsertAlertHistory(alert types.ReversalAlert) error {
	query := `
	INSERT INTO alert_history (address, symbol, percent_gain, local_bottom, price, fired_at)
	VALUES (?, ?, ?, ?, ?, ?);`

	_, err := DB.Exec(query, alert.Address, alert.Symbol, alert.PercentGain, alert.LocalBottom, alert.Price, alert.FiredAt)
	if err != nil {
		return fmt.Errorf("failed to insert alert history: %w", err)
	}

	log.Printf("Alert history recorded: %s +%.1f%%", alert.Symbol, alert.PercentGain)
	return nil
}

// CountAlertHistory returns the total number of reversal alerts fired so far.
func CountAlertHistory() (int64, error) {
	var count int64
	err := DB.QueryRow(`SELECT COUNT(*) FROM alert_history;`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count alert history: %w", err)
	}
	return count, nil
}

// GetAlertHistory fetches the most recent fired alerts, newest first.
func GetAlertHistory(limit int) ([]types.ReversalAlert, error) {
	query := `
	SELECT address, symbol, percent_gain, local_bottom, price, fired_at
	FROM alert_history
	ORDER BY id DESC
	LIMIT ?;`

	rows, err := DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query alert history: %w", err)
	}
	defer rows.Close()

	var alerts []types.ReversalAlert
	for rows.Next() {
		var alert types.ReversalAlert
		if err := rows.Scan(&alert.Address, &alert.Symbol, &alert.PercentGain, &alert.LocalBottom, &alert.Price, &alert.FiredAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		alerts = append(alerts, alert)
	}

	return alerts, nil
}
