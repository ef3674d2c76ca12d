// Package shop models a small storefront.
//
// Carts collect items before checkout.
package shop
