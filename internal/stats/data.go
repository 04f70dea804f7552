package stats

// 各邦/中央直辖区人口密度（人/平方公里，近似值）。
// "Jammu and Kashmir" 在源数据中出现两次，Prepare 会按首次出现去重。
var defaultRows = []struct {
	name    string
	density float64
}{
	{"Andhra Pradesh", 308},
	{"Arunachal Pradesh", 17},
	{"Assam", 398},
	{"Bihar", 1102},
	{"Chhattisgarh", 189},
	{"Goa", 394},
	{"Gujarat", 308},
	{"Haryana", 573},
	{"Himachal Pradesh", 123},
	{"Jammu and Kashmir", 297},
	{"Jharkhand", 414},
	{"Karnataka", 319},
	{"Kerala", 859},
	{"Madhya Pradesh", 236},
	{"Maharashtra", 365},
	{"Manipur", 122},
	{"Meghalaya", 52},
	{"Mizoram", 52},
	{"Nagaland", 17},
	{"Odisha", 269},
	{"Punjab", 551},
	{"Rajasthan", 200},
	{"Sikkim", 86},
	{"Tamil Nadu", 555},
	{"Telangana", 312},
	{"Tripura", 60},
	{"Uttar Pradesh", 829},
	{"Uttarakhand", 189},
	{"West Bengal", 1029},
	{"Andaman and Nicobar Islands", 44},
	{"Chandigarh", 904},
	{"Dadra and Nagar Haveli", 970},
	{"Daman and Diu", 774},
	{"Delhi", 11297},
	{"Jammu and Kashmir", 297},
	{"Lakshadweep", 2.8},
	{"Ladakh", 208},
	{"Puducherry", 3182},
}

// Default：内置的 38 行统计表（未经 Prepare）
func Default() Table {
	t := make(Table, 0, len(defaultRows))
	for _, r := range defaultRows {
		t = append(t, Record{Name: r.name, Metric: r.density})
	}
	return t
}
