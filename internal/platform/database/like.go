package database

import "strings"

// likeEscaper 转义LIKE模式中的通配符，配合 ESCAPE '\' 使用
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LikeEscapeClause 紧跟在 LIKE ? 之后，使 ContainsPattern 中的转义字符生效
const LikeEscapeClause = ` ESCAPE '\'`

// ContainsPattern 把用户输入转换为“包含该子串”的LIKE模式，输入中的 % 和 _ 按字面匹配
func ContainsPattern(query string) string {
	return "%" + likeEscaper.Replace(query) + "%"
}
