// Copyright 2025 OdooFlow
// SPDX-License-Identifier: Apache-2.0

/*
Package pool provides a thread-safe, scope-aware cache of authenticated
Odoo connections.

# Keying

Pool keys are derived from url + username + sha256(scope), hashed again
into the lookup digest. Two requests with the same identity but
different scope strings always map to different entries; a connection
authenticated under one scope is never handed out to a request
presented under another.

# Expiry

Entries carry an expiry set at storage time (pool TTL, in minutes) and
are evicted lazily on the first Get after they expire. There is no
background sweeper; the Stats snapshot therefore distinguishes total,
active and expired-but-unswept entries.
*/
package pool
