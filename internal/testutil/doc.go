// Package testutil contains helper builders and fakes used across tests to
// reduce boilerplate when constructing tool inputs, attachments and
// controllable backends, and when observing the messages an engine appends.
// They are not intended for production usage.
package testutil
