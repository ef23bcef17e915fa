// Package prompt asks the user questions on a terminal using numbered menus
// and line input.
package prompt
