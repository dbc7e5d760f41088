// Package preprocess normalizes raw manga pages into fixed-size PNG frames.
//
// Each source image is flattened to opaque RGB, center-cropped to the target
// aspect ratio along whichever axis is too long, resized with a Lanczos filter
// to the exact target dimensions, and written as <stem>.png into the processed
// directory. Pages are handled one at a time in filename order; the first
// failure aborts the batch.
package preprocess
