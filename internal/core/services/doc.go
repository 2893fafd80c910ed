// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services are pure Go with no CGO. They never import adapters;
// filesystem watching, extraction and persistence arrive through
// driven ports.
package services
