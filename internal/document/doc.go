// Package document turns uploaded PDF files into retrieval-ready text chunks.
//
// Processing runs in three stages: text extraction (per page, with page
// markers), cleaning (whitespace and control-character normalization), and
// splitting into overlapping chunks sized for embedding.
package document
