// Package parser turns Go source files into documentation entries.
//
// Each package yields one module entry for the package itself plus entries
// for its exported declarations:
//
//	package net/http           module     net/http
//	type Client                module     net/http::Client
//	func (*Client) Do          method     net/http::Client#Do        #Do(req *Request)
//	field Client.Timeout       attribute  net/http::Client#Timeout   #Timeout
//	func Get                   method     net/http#Get               .Get(url string)
//	const MethodGet            constant   net/http::MethodGet        ::MethodGet
//
// Doc comments are rendered to HTML with go/doc/comment. Syntax errors are
// recorded on the ParseResult and whatever partial AST the Go parser returns
// is still indexed, so one broken file does not stop a build.
//
//	p := parser.New()
//	result, err := p.ParsePackage("example.com/shop", files)
//	if err != nil {
//	    return err
//	}
//	for _, e := range result.Entries {
//	    fmt.Println(e.Kind, e.CanonicalName)
//	}
package parser
