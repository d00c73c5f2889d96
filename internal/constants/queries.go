package constants

const (
	GetStatusByApiKey = `
	SELECT id, status FROM api_keys WHERE id = $1
	`

	InsertApiKey = `
	INSERT INTO api_keys (id, status, created_at) VALUES ($1, true, NOW())
	`
)
