package parser

import (
	"errors"
	"fmt"
	"go/ast"
	"go/doc/comment"
	"go/parser"
	"go/scanner"
	"go/token"
	"os"
	"strings"

	"github.com/dshills/godocsearch/pkg/types"
)

// Parser turns Go package sources into documentation entries
type Parser struct {
	fset    *token.FileSet
	printer *comment.Printer
}

// New creates a new Parser instance
func New() *Parser {
	return &Parser{
		fset:    token.NewFileSet(),
		printer: &comment.Printer{HeadingLevel: 3},
	}
}

// ParsePackage parses the given files of one package and emits entries for
// the package itself and every exported declaration in it. Files are read in
// the order given. Files of an external test package (name ending in "_test")
// are skipped.
func (p *Parser) ParsePackage(importPath string, files []string) (*types.ParseResult, error) {
	if importPath == "" {
		return nil, fmt.Errorf("import path is required")
	}

	result := &types.ParseResult{ImportPath: importPath}
	var parsed []*ast.File
	var paths []string

	for _, filePath := range files {
		content, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}

		file, err := parser.ParseFile(p.fset, filePath, content, parser.ParseComments)
		if err != nil {
			// Syntax errors are non-fatal; keep whatever partial AST came back
			result.AddError(filePath, syntaxErrorPos(err), fmt.Sprintf("syntax error: %s", syntaxErrorMsg(err)))
		}
		if file == nil || file.Name == nil {
			continue
		}

		name := file.Name.Name
		if strings.HasSuffix(name, "_test") {
			continue
		}
		if result.PackageName == "" {
			result.PackageName = name
		} else if name != result.PackageName {
			result.AddError(filePath, types.Position{}, fmt.Sprintf("package %s does not match %s", name, result.PackageName))
			continue
		}

		parsed = append(parsed, file)
		paths = append(paths, filePath)
	}

	if len(parsed) == 0 {
		return result, nil
	}

	pkg := types.DocEntry{
		CanonicalName: importPath,
		Kind:          types.KindModule,
		Path:          packagePath(importPath),
		OwnerName:     importPath,
		File:          paths[0],
		Start:         types.Position{Line: 1, Column: 1},
	}
	for i, file := range parsed {
		if file.Doc != nil {
			pkg.DescriptionHTML = p.renderDoc(file.Doc)
			pkg.File = paths[i]
			pkg.Start = p.position(file.Package)
			break
		}
	}
	result.Entries = append(result.Entries, pkg)

	for i, file := range parsed {
		extractor := &entryExtractor{
			parser:     p,
			filePath:   paths[i],
			importPath: importPath,
		}
		for _, decl := range file.Decls {
			extractor.visit(decl)
		}
		result.Entries = append(result.Entries, extractor.entries...)
	}

	return result, nil
}

// renderDoc converts a doc comment into HTML
func (p *Parser) renderDoc(doc *ast.CommentGroup) string {
	if doc == nil {
		return ""
	}
	text := doc.Text()
	if strings.TrimSpace(text) == "" {
		return ""
	}
	var cp comment.Parser
	return strings.TrimSpace(string(p.printer.HTML(cp.Parse(text))))
}

// position converts a token position to our Position type
func (p *Parser) position(pos token.Pos) types.Position {
	position := p.fset.Position(pos)
	return types.Position{
		Line:   position.Line,
		Column: position.Column,
	}
}

// entryExtractor walks the top-level declarations of one file
type entryExtractor struct {
	parser     *Parser
	filePath   string
	importPath string
	entries    []types.DocEntry
}

func (e *entryExtractor) visit(decl ast.Decl) {
	switch d := decl.(type) {
	case *ast.FuncDecl:
		e.extractFunction(d)
	case *ast.GenDecl:
		e.extractGenDecl(d)
	}
}

// extractFunction emits package funcs and methods on exported types
func (e *entryExtractor) extractFunction(funcDecl *ast.FuncDecl) {
	name := funcDecl.Name.Name
	if !token.IsExported(name) {
		return
	}

	entry := types.DocEntry{
		Kind:            types.KindMethod,
		DescriptionHTML: e.parser.renderDoc(funcDecl.Doc),
		File:            e.filePath,
		Start:           e.parser.position(funcDecl.Pos()),
	}
	params := fieldListToString(funcDecl.Type.Params)

	if funcDecl.Recv != nil && len(funcDecl.Recv.List) > 0 {
		recv := receiverType(funcDecl.Recv.List[0].Type)
		if !token.IsExported(recv) {
			return
		}
		entry.OwnerName = typeName(e.importPath, recv)
		entry.CanonicalName = entry.OwnerName + "#" + name
		entry.MemberLabel = fmt.Sprintf("#%s(%s)", name, params)
		entry.Path = typePath(e.importPath, recv) + "#method-i-" + name
	} else {
		entry.OwnerName = e.importPath
		entry.CanonicalName = e.importPath + "#" + name
		entry.MemberLabel = fmt.Sprintf(".%s(%s)", name, params)
		entry.Path = packagePath(e.importPath) + "#method-c-" + name
	}

	e.entries = append(e.entries, entry)
}

// extractGenDecl handles type, const and var declarations
func (e *entryExtractor) extractGenDecl(genDecl *ast.GenDecl) {
	for _, spec := range genDecl.Specs {
		// A lone spec inherits the doc comment written above the keyword
		doc := genDecl.Doc
		if len(genDecl.Specs) > 1 {
			doc = nil
		}

		switch s := spec.(type) {
		case *ast.TypeSpec:
			if s.Doc != nil {
				doc = s.Doc
			}
			e.extractTypeSpec(s, doc)
		case *ast.ValueSpec:
			if s.Doc != nil {
				doc = s.Doc
			} else if doc == nil {
				doc = s.Comment
			}
			e.extractValueSpec(s, doc)
		}
	}
}

func (e *entryExtractor) extractTypeSpec(typeSpec *ast.TypeSpec, doc *ast.CommentGroup) {
	name := typeSpec.Name.Name
	if !token.IsExported(name) {
		return
	}

	owner := typeName(e.importPath, name)
	e.entries = append(e.entries, types.DocEntry{
		CanonicalName:   owner,
		Kind:            types.KindModule,
		Path:            typePath(e.importPath, name),
		DescriptionHTML: e.parser.renderDoc(doc),
		OwnerName:       owner,
		File:            e.filePath,
		Start:           e.parser.position(typeSpec.Pos()),
	})

	if structType, ok := typeSpec.Type.(*ast.StructType); ok {
		e.extractStructFields(name, structType)
	}
}

// extractStructFields emits exported named fields as attributes
func (e *entryExtractor) extractStructFields(structName string, structType *ast.StructType) {
	if structType.Fields == nil {
		return
	}

	owner := typeName(e.importPath, structName)
	for _, field := range structType.Fields.List {
		doc := field.Doc
		if doc == nil {
			doc = field.Comment
		}
		for _, name := range field.Names {
			if !token.IsExported(name.Name) {
				continue
			}
			e.entries = append(e.entries, types.DocEntry{
				CanonicalName:   owner + "#" + name.Name,
				Kind:            types.KindAttribute,
				Path:            typePath(e.importPath, structName) + "#attribute-i-" + name.Name,
				DescriptionHTML: e.parser.renderDoc(doc),
				OwnerName:       owner,
				MemberLabel:     "#" + name.Name,
				File:            e.filePath,
				Start:           e.parser.position(name.Pos()),
			})
		}
	}
}

// extractValueSpec emits exported consts and vars
func (e *entryExtractor) extractValueSpec(valueSpec *ast.ValueSpec, doc *ast.CommentGroup) {
	description := e.parser.renderDoc(doc)
	for _, name := range valueSpec.Names {
		if !token.IsExported(name.Name) {
			continue
		}
		e.entries = append(e.entries, types.DocEntry{
			CanonicalName:   e.importPath + "::" + name.Name,
			Kind:            types.KindConstant,
			Path:            packagePath(e.importPath) + "#constant-" + name.Name,
			DescriptionHTML: description,
			OwnerName:       e.importPath,
			MemberLabel:     "::" + name.Name,
			File:            e.filePath,
			Start:           e.parser.position(name.Pos()),
		})
	}
}

func packagePath(importPath string) string {
	return "packages/" + importPath + ".html"
}

func typePath(importPath, name string) string {
	return "types/" + importPath + "/" + name + ".html"
}

func typeName(importPath, name string) string {
	return importPath + "::" + name
}

// receiverType extracts the receiver type name, dropping pointers and type parameters
func receiverType(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return receiverType(t.X)
	case *ast.IndexExpr:
		return receiverType(t.X)
	case *ast.IndexListExpr:
		return receiverType(t.X)
	case *ast.ParenExpr:
		return receiverType(t.X)
	case *ast.Ident:
		return t.Name
	}
	return ""
}

// fieldListToString renders a parameter list the way it reads in source
func fieldListToString(fieldList *ast.FieldList) string {
	if fieldList == nil || len(fieldList.List) == 0 {
		return ""
	}

	var parts []string
	for _, field := range fieldList.List {
		typeStr := exprToString(field.Type)
		if len(field.Names) > 0 {
			for _, name := range field.Names {
				parts = append(parts, fmt.Sprintf("%s %s", name.Name, typeStr))
			}
		} else {
			parts = append(parts, typeStr)
		}
	}

	return strings.Join(parts, ", ")
}

// exprToString converts a type expression to its source form
func exprToString(expr ast.Expr) string {
	if expr == nil {
		return ""
	}

	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return "*" + exprToString(t.X)
	case *ast.ArrayType:
		if t.Len != nil {
			return "[" + exprToString(t.Len) + "]" + exprToString(t.Elt)
		}
		return "[]" + exprToString(t.Elt)
	case *ast.BasicLit:
		return t.Value
	case *ast.MapType:
		return fmt.Sprintf("map[%s]%s", exprToString(t.Key), exprToString(t.Value))
	case *ast.ChanType:
		switch t.Dir {
		case ast.SEND:
			return "chan<- " + exprToString(t.Value)
		case ast.RECV:
			return "<-chan " + exprToString(t.Value)
		}
		return "chan " + exprToString(t.Value)
	case *ast.FuncType:
		sig := "func(" + fieldListToString(t.Params) + ")"
		if t.Results != nil && t.Results.NumFields() > 0 {
			results := fieldListToString(t.Results)
			if t.Results.NumFields() > 1 || len(t.Results.List[0].Names) > 0 {
				return sig + " (" + results + ")"
			}
			return sig + " " + results
		}
		return sig
	case *ast.InterfaceType:
		if t.Methods == nil || len(t.Methods.List) == 0 {
			return "interface{}"
		}
		return "interface{...}"
	case *ast.StructType:
		return "struct{...}"
	case *ast.SelectorExpr:
		return exprToString(t.X) + "." + t.Sel.Name
	case *ast.Ellipsis:
		return "..." + exprToString(t.Elt)
	case *ast.IndexExpr:
		return exprToString(t.X) + "[" + exprToString(t.Index) + "]"
	case *ast.IndexListExpr:
		args := make([]string, len(t.Indices))
		for i, idx := range t.Indices {
			args[i] = exprToString(idx)
		}
		return exprToString(t.X) + "[" + strings.Join(args, ", ") + "]"
	case *ast.ParenExpr:
		return "(" + exprToString(t.X) + ")"
	default:
		return "..."
	}
}

// syntaxErrorPos returns the position of the first scanner error in err
func syntaxErrorPos(err error) types.Position {
	var list scanner.ErrorList
	if errors.As(err, &list) && len(list) > 0 {
		return types.Position{Line: list[0].Pos.Line, Column: list[0].Pos.Column}
	}
	return types.Position{}
}

// syntaxErrorMsg returns the first scanner message, noting how many more followed
func syntaxErrorMsg(err error) string {
	var list scanner.ErrorList
	if !errors.As(err, &list) || len(list) == 0 {
		return err.Error()
	}
	if len(list) == 1 {
		return list[0].Msg
	}
	return fmt.Sprintf("%s (and %d more)", list[0].Msg, len(list)-1)
}
