package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// TransactionStatus represents the status of a sale transaction
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusVoided    TransactionStatus = "voided"
)

func (s TransactionStatus) String() string {
	return string(s)
}

func (s TransactionStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

func (s *TransactionStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*s = TransactionStatus(str)
	return nil
}

func (s TransactionStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *TransactionStatus) Scan(value interface{}) error {
	if value == nil {
		*s = TransactionStatusCompleted
		return nil
	}
	switch v := value.(type) {
	case string:
		*s = TransactionStatus(v)
	case []byte:
		*s = TransactionStatus(string(v))
	}
	return nil
}
