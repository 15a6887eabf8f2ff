// Package textutil sanitizes user-supplied names for safe filesystem
// use: uploaded filenames keep their readable form with unsafe
// characters replaced, while clip filename tokens collapse to lowercase
// ascii.
package textutil
