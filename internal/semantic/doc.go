// Package semantic provides keyword derivation for the table-of-contents
// generator.
//
// NameSplitter breaks an identifier into its constituent words, handling
// camelCase, PascalCase, snake_case, kebab-case and SCREAMING_SNAKE_CASE.
// Stemmer normalizes those words to a common root via the Porter2 algorithm
// so that, for example, "authenticate" and "authentication" derive the same
// keyword. Both are combined by internal/toc when building the keyword index.
package semantic
