package translit

// armenianRules maps Latin phonetic spellings to Armenian letters. Where a
// spelling is ambiguous the most common reading is listed first.
var armenianRules = []Rule{
	{Pattern: "a", Candidates: []string{"ա"}},
	{Pattern: "b", Candidates: []string{"բ"}},
	{Pattern: "g", Candidates: []string{"գ"}},
	{Pattern: "d", Candidates: []string{"դ"}},
	{Pattern: "e", Candidates: []string{"ե", "է"}},
	{Pattern: "z", Candidates: []string{"զ"}},
	{Pattern: "t", Candidates: []string{"տ", "թ"}},
	{Pattern: "i", Candidates: []string{"ի"}},
	{Pattern: "l", Candidates: []string{"լ"}},
	{Pattern: "kh", Candidates: []string{"խ"}},
	{Pattern: "k", Candidates: []string{"կ", "ք"}},
	{Pattern: "h", Candidates: []string{"հ"}},
	{Pattern: "j", Candidates: []string{"ջ"}},
	{Pattern: "sh", Candidates: []string{"շ"}},
	{Pattern: "ch", Candidates: []string{"չ", "ճ"}},
	{Pattern: "zh", Candidates: []string{"ժ"}},
	{Pattern: "x", Candidates: []string{"խ", "ղ"}},
	{Pattern: "c", Candidates: []string{"ց", "ք", "ծ"}},
	{Pattern: "m", Candidates: []string{"մ"}},
	{Pattern: "y", Candidates: []string{"յ"}},
	{Pattern: "n", Candidates: []string{"ն"}},
	{Pattern: "o", Candidates: []string{"օ", "ո"}},
	{Pattern: "p", Candidates: []string{"պ", "փ"}},
	{Pattern: "r", Candidates: []string{"ր", "ռ"}},
	{Pattern: "s", Candidates: []string{"ս"}},
	{Pattern: "v", Candidates: []string{"վ"}},
	{Pattern: "u", Candidates: []string{"ու"}},
	{Pattern: "f", Candidates: []string{"ֆ"}},
	{Pattern: "q", Candidates: []string{"ք"}},
	{Pattern: "ev", Candidates: []string{"և"}},
	{Pattern: "ts", Candidates: []string{"ց", "ծ"}},
	{Pattern: "ye", Candidates: []string{"ե"}},
	{Pattern: "gh", Candidates: []string{"ղ"}},
	{Pattern: "vo", Candidates: []string{"ո"}},
}

// armenianReverse holds one canonical phonetic form per Armenian letter.
var armenianReverse = map[rune]string{
	'ա': "a", 'բ': "b", 'գ': "g", 'դ': "d", 'ե': "e", 'զ': "z",
	'է': "e", 'ը': "y", 'թ': "t", 'ժ': "zh", 'ի': "i", 'լ': "l",
	'խ': "kh", 'ծ': "ts", 'կ': "k", 'հ': "h", 'ձ': "dz", 'ղ': "gh",
	'ճ': "ch", 'մ': "m", 'յ': "y", 'ն': "n", 'շ': "sh", 'ո': "o",
	'չ': "ch", 'պ': "p", 'ջ': "j", 'ռ': "r", 'ս': "s", 'վ': "v",
	'տ': "t", 'ր': "r", 'ց': "ts", 'ւ': "v", 'փ': "p", 'ք': "q",
	'և': "ev", 'օ': "o", 'ֆ': "f",
}

// armenianDigraph is the vowel "ու", written with two letters but read as "u".
var armenianDigraph = Digraph{Native: "ու", Phonetic: "u"}

// ArmenianTable returns the rule table used for Armenian storefront search.
func ArmenianTable() *Table {
	table, err := NewTable(armenianRules, armenianReverse, armenianDigraph)
	if err != nil {
		panic(err)
	}
	return table
}
