// Command linkgateway serves Infotik share links: it resolves video and
// pulse ids against the content API, renders crawler-facing preview
// documents, and routes human visitors into the app, the store listing, or
// the website.
package main
