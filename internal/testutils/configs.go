package testutils

// ColorElectionJSON is the two-candidate, single-issue election in which 90%
// of a 1000-voter population prefers red.
const ColorElectionJSON = `{
  "seed": 20240517,
  "issues": [
    {"name": "color", "stances": ["red", "blue"]}
  ],
  "candidates": [
    {"name": "Alice", "views": [{"issue": "color", "stance": "red"}]},
    {"name": "Bob", "views": [{"issue": "color", "stance": "blue"}]}
  ],
  "populations": [
    {
      "name": "everyone",
      "size": 1000,
      "issue_views": [
        {"name": "color", "weight": 1, "weight_variance": 0, "stances": {"red": 0.9, "blue": 0.1}}
      ]
    }
  ]
}`

// TiedElectionJSON describes an electorate in which every voter scores both
// candidates equally, so every vote goes to the candidate listed first.
const TiedElectionJSON = `{
  "seed": 7,
  "issues": [
    {"name": "color", "stances": ["red", "blue"]},
    {"name": "size", "stances": ["big", "small"]}
  ],
  "candidates": [
    {"name": "Bob", "views": [{"issue": "color", "stance": "blue"}, {"issue": "size", "stance": "big"}]},
    {"name": "Alice", "views": [{"issue": "color", "stance": "red"}, {"issue": "size", "stance": "small"}]}
  ],
  "populations": [
    {
      "name": "split",
      "size": 50,
      "issue_views": [
        {"name": "size", "weight": 1, "weight_variance": 0, "stances": {"big": 1, "small": 0}},
        {"name": "color", "weight": 1, "weight_variance": 0, "stances": {"red": 1, "blue": 0}}
      ]
    }
  ]
}`

// MissingCandidateViewJSON has a candidate with no stance on "size".
const MissingCandidateViewJSON = `{
  "issues": [
    {"name": "color", "stances": ["red", "blue"]},
    {"name": "size", "stances": ["big", "small"]}
  ],
  "candidates": [
    {"name": "Alice", "views": [{"issue": "color", "stance": "red"}, {"issue": "size", "stance": "big"}]},
    {"name": "Bob", "views": [{"issue": "color", "stance": "blue"}]}
  ],
  "populations": [
    {
      "name": "everyone",
      "size": 10,
      "issue_views": [
        {"name": "color", "weight": 1, "weight_variance": 0, "stances": {"red": 0.5, "blue": 0.5}},
        {"name": "size", "weight": 1, "weight_variance": 0, "stances": {"big": 0.5, "small": 0.5}}
      ]
    }
  ]
}`

// ThreeIssueElectionYAML is a YAML election with two populations.
const ThreeIssueElectionYAML = `
seed: 99
issues:
  - name: taxes
    stances: [raise, cut, hold]
  - name: guns
    stances: [restrict, protect]
  - name: climate
    stances: [act, wait]
candidates:
  - name: Green
    views:
      - {issue: taxes, stance: raise}
      - {issue: guns, stance: restrict}
      - {issue: climate, stance: act}
  - name: Blue
    views:
      - {issue: taxes, stance: cut}
      - {issue: guns, stance: protect}
      - {issue: climate, stance: wait}
  - name: Grey
    views:
      - {issue: taxes, stance: hold}
      - {issue: guns, stance: protect}
      - {issue: climate, stance: act}
populations:
  - name: urban
    size: 400
    issue_views:
      - name: taxes
        weight: 1.5
        weight_variance: 0.5
        stances: {raise: 0.5, cut: 0.2, hold: 0.3}
      - name: guns
        weight: 2
        weight_variance: 1
        stances: {restrict: 0.7, protect: 0.3}
      - name: climate
        weight: 1
        weight_variance: 0.25
        stances: {act: 0.8, wait: 0.2}
  - name: rural
    size: 600
    issue_views:
      - name: taxes
        weight: 2
        weight_variance: 0.5
        stances: {raise: 0.1, cut: 0.6, hold: 0.3}
      - name: guns
        weight: 2.5
        weight_variance: 1
        stances: {restrict: 0.2, protect: 0.8}
      - name: climate
        weight: 0.5
        weight_variance: 0.5
        stances: {act: 0.4, wait: 0.6}
`
