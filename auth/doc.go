// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth guards dataset imports.

# Admin Keys

Admin keys use HMAC-SHA256 over the chamber name to create deterministic,
verifiable keys:

	adminKey := auth.GenerateAdminKey(models.ChamberHouse, salt)
	err := auth.ValidateAdminKey(models.ChamberHouse, adminKey, salt)

The key is URL-safe base64 encoded without padding. The house and senate
keys differ, so a key handed out for one chamber cannot replace the other.
Nothing is stored; an operator derives the key from ADMIN_KEY_SALT with
`convert -admin-key`. An empty salt never validates.

# IP Hashing

Importers are logged by a salted hash of their address:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
