// Package hitlog reads Apache access logs (the per-domain "domlogs" a
// hosting panel keeps) and serves the most recent requests as table rows.
//
// # Reading
//
// Tail keeps a ring buffer of the last N lines, so memory stays proportional
// to N rather than to the file size. N <= 0 reads the whole file.
//
// # Parsing
//
// Parse accepts common and combined log format:
//
//	203.0.113.9 - - [10/Oct/2024:13:55:36 -0700] "GET /index.php HTTP/1.1" 200 2326 "https://example.com/" "Mozilla/5.0"
//
// "-" for bytes becomes 0; "-" for user, referrer and agent becomes empty.
// Escaped quotes inside quoted fields are unescaped.
//
// # Records
//
// Provider turns each parsed hit into a record with fields host, user, time
// (time.Time), method, path, protocol, status (int), bytes (int64), referrer
// and user_agent. Lines that do not parse are skipped.
package hitlog
