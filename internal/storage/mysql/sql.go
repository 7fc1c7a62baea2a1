package mysql

const insertRunSQL = `
INSERT INTO scrape_runs
  (id, target_url, strategy, record_count, synthetic, nav_error, duration_ms, created_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?)
`

// Newest first; aligns with idx_scrape_runs_created.
const listRunsSQL = `
SELECT id, target_url, strategy, record_count, synthetic, nav_error, duration_ms, created_at
FROM scrape_runs
ORDER BY created_at DESC, id DESC
LIMIT ?
`
