// Package store implements the durable Postgres store for indicator data and run logs.
package store

const schemaDDL = `
CREATE TABLE IF NOT EXISTS indicators (
    indicator_id SERIAL PRIMARY KEY,
    series_id    TEXT UNIQUE NOT NULL,
    title        TEXT NOT NULL,
    last_updated TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS indicator_data (
    data_id          BIGSERIAL PRIMARY KEY,
    indicator_id     INTEGER NOT NULL REFERENCES indicators (indicator_id),
    observation_date DATE NOT NULL,
    value            DOUBLE PRECISION,
    UNIQUE (indicator_id, observation_date)
);
CREATE INDEX IF NOT EXISTS idx_indicator_data_date ON indicator_data (observation_date);
CREATE INDEX IF NOT EXISTS idx_indicator_data_indicator ON indicator_data (indicator_id);

CREATE TABLE IF NOT EXISTS etl_logs (
    run_id                 SERIAL PRIMARY KEY,
    run_timestamp          TIMESTAMPTZ DEFAULT NOW(),
    status                 TEXT NOT NULL,
    records_processed      INTEGER,
    error_message          TEXT,
    execution_time_seconds DOUBLE PRECISION
);
CREATE INDEX IF NOT EXISTS idx_etl_logs_timestamp ON etl_logs (run_timestamp);
`
