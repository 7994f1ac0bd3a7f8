package tsemitter

import "fmt"

func renderPackageJSON(name string) string {
	return fmt.Sprintf(`{
  "name": %q,
  "version": "0.0.0",
  "private": true,
  "type": "module",
  "scripts": {
    "typecheck": "tsc --noEmit",
    "format": "prettier --write \"**/*.ts\""
  },
  "dependencies": {
    "zod": "^3.23.8"
  },
  "devDependencies": {
    "prettier": "^3.3.3",
    "typescript": "^5.5.4"
  }
}
`, name)
}

func renderTSConfig() string {
	return `{
  "compilerOptions": {
    "target": "ES2020",
    "module": "ESNext",
    "moduleResolution": "Bundler",
    "strict": true,
    "noEmit": true,
    "skipLibCheck": true
  },
  "include": ["schemas/**/*.ts", "requests/**/*.ts"]
}
`
}

func renderPrettierRC() string {
	return `{
  "semi": true,
  "singleQuote": false,
  "trailingComma": "all",
  "printWidth": 100
}
`
}
