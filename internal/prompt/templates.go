package prompt

import "strings"

const migrationSystem = "You are a migration assistant. Convert files into React-compatible format."

var analysisTemplate = strings.TrimSpace(`
You are reviewing part of a legacy JSP frontend. Analyze only the files below and return a JSON array of analysis objects, one per file group you find meaningful.
IMPORTANT INSTRUCTIONS:
Your response must be valid JSON only, with no markdown, comments or extra text.
Use double quotes for all keys and string values and escape embedded quotes.
If a value is missing, use null or an empty array. Do not include trailing commas.
Ignore backend Java sources (.java, .class, .jar).
Each object should follow this shape:
{
  "project": {"name": "string", "language": "string", "files": number},
  "analysis": {
    "complexity_score": number,
    "component_hierarchy": {"summary": "string", "issues": ["string"]},
    "outdated_code": {"summary": "string", "issues": ["string"]},
    "mixed_patterns": {"summary": "string", "issues": ["string"]},
    "legacy_state_management": {"present": boolean, "description": "string"}
  },
  "dependencies": {"list": [{"name": "string", "version": "string", "status": "up-to-date | outdated | vulnerable"}]},
  "vulnerabilities": {"count": number, "risk_level": "Low | Medium | High", "details": ["string"]},
  "migration": {
    "recommended_framework": "ReactJS",
    "phases": [{"name": "string", "description": "string", "estimated_time_weeks": "string"}]
  }
}
Base your analysis only on the following project files. Do not invent content.`)

var migrationReportTemplate = strings.TrimSpace(`
You are planning the migration of a legacy JSP frontend to ReactJS. For the files below, return a JSON array with one object per file:
{"fileName": "string", "purpose": "string", "react_equivalent": "string", "effort": "Low | Medium | High", "blockers": ["string"], "notes": "string"}
Respond with valid JSON only. Do not include markdown or explanations.`)

var migrationTemplate = strings.TrimSpace(`
Convert each of the following legacy frontend files into React (JSX) equivalents. Return a JSON array with one object per converted file:
{"fileName": "string", "convertedContent": "string"}
Use a .jsx extension for converted pages and keep relative paths. Escape quotes and newlines inside convertedContent. Respond with valid JSON only.`)
