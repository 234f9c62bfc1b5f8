// Package retouch contains the per-image filters that run before or after
// reframing: watermark blurring, whitespace trimming and the height and width
// normalizations that bring an image onto the 2160-row canvas grid.
package retouch
