// Package codeview renders, copies and saves generated automation scripts.
//
// Highlight colours Python source for the terminal with chroma. Copier
// writes to the system clipboard and tracks the "Copied!" label, which
// reverts after CopiedDuration. Save writes the script as automation.py
// without clobbering an existing file unless asked to.
package codeview
