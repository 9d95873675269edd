// Package core holds the small numeric, mixing and buffer helpers shared by
// every stage of the waveshaper.
package core
