// Package calendar queries the Google Calendar API on behalf of an
// authenticated user and applies the local event filtering the API does
// not provide: day/default time windows and free-text keyword matching.
package calendar
