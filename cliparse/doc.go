// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# CLI Flags and Environment Variables

	-p              PORT            Server port (default 3318)
	-d              DATABASE_URL    Database URL (optional)
	-t              DATABASE_TYPE   sqlite or postgres (default sqlite)
	-admin-salt     ADMIN_KEY_SALT  Admin key salt
	-data           DATA_DRIVER     fs, s3 or db (default fs)
	-data-dir       DATA_DIR        Dataset directory (default ./data)
	-house-key      HOUSE_KEY       House dataset (default house.json)
	-senate-key     SENATE_KEY      Senate dataset (default senate.json)
	-s3-bucket      S3_BUCKET
	-s3-region      S3_REGION
	-s3-endpoint    S3_ENDPOINT
	-s3-path-style  S3_PATH_STYLE
	-env                            Env file (default .env when present)

CLI flags take precedence over environment variables. The env file is read
with godotenv and never overrides a variable that is already set.

# Validation

ParseFlags returns an error when:

  - the s3 driver has no bucket
  - the db driver has no database URL
  - a database is configured without ADMIN_KEY_SALT
  - an explicit -env file cannot be read
*/
package cliparse
